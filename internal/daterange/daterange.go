// Package daterange builds the date-restriction token Google's search
// endpoint accepts in its tbs parameter.
package daterange

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// dashedUS is the month-first dashed form ("10-20-2004"). dateparse treats
// dashed dates as day-first or ISO and rejects this one, so it is tried
// explicitly before the general parser.
const dashedUS = "01-02-2006"

// InvalidDateError reports a date string that could not be resolved to a
// calendar date. It carries the original input verbatim.
type InvalidDateError struct {
	Input string
	err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("could not parse date input: %q", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return e.err }

// Format parses a date in any common textual form (e.g. "10-20-2004",
// "2004-10-20", "October 20, 2004") and renders it as mm/dd/yyyy. Any
// time-of-day or timezone component is discarded. Format is idempotent on
// its own output.
func Format(input string) (string, error) {
	if t, err := time.Parse(dashedUS, input); err == nil {
		return t.Format("01/02/2006"), nil
	}

	t, err := dateparse.ParseAny(input)
	if err != nil {
		return "", &InvalidDateError{Input: input, err: err}
	}
	return t.Format("01/02/2006"), nil
}

// BuildFilter constructs the tbs token restricting results to [start, end].
// Empty strings mean the bound is absent. Both absent returns "" (no
// filtering). If exactly one bound is given, the other takes its value; this
// is the documented defaulting rule, not a fallback.
func BuildFilter(start, end string) (string, error) {
	if start == "" && end == "" {
		return "", nil
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}

	min, err := Format(start)
	if err != nil {
		return "", err
	}
	max, err := Format(end)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("cdr:1,cd_min:%s,cd_max:%s", min, max), nil
}
