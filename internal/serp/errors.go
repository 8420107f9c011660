package serp

import (
	"errors"
	"fmt"
)

// ErrStartBeyondCount rejects a search whose start offset is not below the
// requested result count; the first page would ask for a non-positive number
// of results.
var ErrStartBeyondCount = errors.New("start offset must be less than the requested result count")

// StatusError reports a non-success HTTP status from the search endpoint.
// The fetch is not retried; the stream ends at the failing page and results
// yielded before it remain valid.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search request failed with status %d", e.StatusCode)
}

// TransportError reports a connection-level failure: DNS, dial, timeout, or
// TLS. Same propagation as StatusError.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search request transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
