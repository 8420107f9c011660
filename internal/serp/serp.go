// Package serp searches a web search engine by scraping its paginated HTML
// result pages and streaming normalized results back to the caller.
package serp

import (
	"context"
	"iter"
	"time"
)

// Result is one hit extracted from a result page. Missing sub-elements on
// the page degrade to empty fields rather than errors.
type Result struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Provider abstracts a search engine that can stream results for a query.
// Implementations may scrape, use official APIs, or other mechanisms.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) iter.Seq2[Result, error]
}

// Options control a single search call. The zero value is usable; defaults
// are filled in when the search starts.
type Options struct {
	// NumResults caps how many results the stream yields. Default 10.
	NumResults int
	// Lang is the interface language code sent as hl. Default "en".
	Lang string
	// Region is the region code sent as gl. Omitted when empty.
	Region string
	// Safe is the safe-search mode. Default "active".
	Safe string
	// Start is the result offset of the first page. Must be less than
	// NumResults.
	Start int
	// Unique drops results whose URL was already yielded in this call.
	Unique bool
	// StartDate and EndDate restrict results to a date range. Any common
	// textual date form is accepted; giving only one bound uses it for both.
	StartDate string
	EndDate   string
	// SleepInterval is the pause between successive page fetches.
	SleepInterval time.Duration
	// Timeout bounds each page request. Default 5s.
	Timeout time.Duration
	// Proxy routes requests through the given URL when it begins with
	// http/https; any other value means direct.
	Proxy string
	// TLSVerify overrides certificate verification. Nil means verify.
	TLSVerify *bool
}

func (o Options) withDefaults() Options {
	if o.NumResults <= 0 {
		o.NumResults = 10
	}
	if o.Lang == "" {
		o.Lang = "en"
	}
	if o.Safe == "" {
		o.Safe = "active"
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	return o
}
