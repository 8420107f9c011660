package serp

import (
	"context"
	"fmt"
	"iter"

	"github.com/FranksOps/quarry/internal/daterange"
	"github.com/FranksOps/quarry/internal/metrics"
	"github.com/FranksOps/quarry/pkg/ratelimit"
)

// Search streams results for query until NumResults have been yielded or the
// engine runs out. The sequence is lazy: each page is fetched only as the
// caller keeps consuming, and breaking out of the range aborts any further
// fetches. Running out of results early is not an error; the stream is just
// shorter than requested. Fetch failures surface as the error side of the
// sequence at the page where they occurred.
func (g *Google) Search(ctx context.Context, query string, opts Options) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		o := opts.withDefaults()

		// Resolve the date filter before any network activity.
		dateFilter, err := daterange.BuildFilter(o.StartDate, o.EndDate)
		if err != nil {
			yield(Result{}, err)
			return
		}

		if o.Start >= o.NumResults {
			yield(Result{}, fmt.Errorf("%w: start %d, num results %d", ErrStartBeyondCount, o.Start, o.NumResults))
			return
		}

		client, err := g.newClient(o)
		if err != nil {
			yield(Result{}, err)
			return
		}

		pacer := ratelimit.NewPacer(o.SleepInterval, 0)

		offset := o.Start
		yielded := 0
		seen := make(map[string]struct{})

		for yielded < o.NumResults {
			// The offset advances a full page per round even when fewer
			// results were yielded, so this can go non-positive; clamp it.
			wanted := o.NumResults - offset
			if wanted < 1 {
				wanted = 1
			}

			body, err := g.fetchPage(ctx, client, query, wanted, offset, o, dateFilter)
			if err != nil {
				yield(Result{}, err)
				return
			}

			newThisPage := 0
			for _, r := range parseResults(body) {
				if _, dup := seen[r.URL]; dup && o.Unique {
					continue
				}
				seen[r.URL] = struct{}{}
				yielded++
				newThisPage++
				metrics.ResultsTotal.Inc()

				if !yield(r, nil) {
					return
				}
				if yielded >= o.NumResults {
					break
				}
			}

			if yielded >= o.NumResults {
				return
			}

			// Nothing usable on this page: the remote is exhausted or every
			// entry was a duplicate. Graceful end of stream.
			if newThisPage == 0 {
				g.cfg.Logger.Debug("result stream exhausted", "query", query, "yielded", yielded)
				return
			}

			offset += pageStep

			if err := pacer.Wait(ctx); err != nil {
				yield(Result{}, err)
				return
			}
		}
	}
}

// SearchURLs is Search reduced to bare result URLs.
func (g *Google) SearchURLs(ctx context.Context, query string, opts Options) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for r, err := range g.Search(ctx, query, opts) {
			if !yield(r.URL, err) {
				return
			}
		}
	}
}
