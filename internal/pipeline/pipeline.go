// Package pipeline orchestrates search runs: it fans queries out over a SERP
// provider, persists every result through a storage backend, and analyzes the
// collected results for terms of interest.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/quarry/internal/analyzer"
	"github.com/FranksOps/quarry/internal/serp"
	"github.com/FranksOps/quarry/internal/storage"
)

// Config holds the components and settings for a pipeline run.
type Config struct {
	// Provider performs the searches. Required.
	Provider serp.Provider

	// Backend persists one record per result. Optional; results are still
	// collected in memory when nil.
	Backend storage.Backend

	// Options is applied to every query's search.
	Options serp.Options

	// Terms are matched against result titles and descriptions after each
	// query completes. Optional.
	Terms []string

	// Concurrency caps the number of queries searched in parallel.
	// Defaults to 1; searches against the same endpoint rarely benefit
	// from more without a proxy pool behind them.
	Concurrency int

	Logger *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	SessionID string
	Records   []*storage.Record
	Matches   []analyzer.TermMatch
}

// Pipeline runs batches of queries through a provider and backend.
type Pipeline struct {
	cfg Config
}

// New validates the config and returns a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("pipeline: provider is required")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg}, nil
}

// Run searches every query, persisting results as they arrive. All records
// from one run share a session ID. The first failing query cancels the rest;
// records persisted before the failure stay persisted.
func (p *Pipeline) Run(ctx context.Context, queries []string) (*Result, error) {
	sessionID := uuid.NewString()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	var mu sync.Mutex
	var records []*storage.Record
	var matches []analyzer.TermMatch

	for _, query := range queries {
		g.Go(func() error {
			var results []serp.Result
			position := 0

			for res, err := range p.cfg.Provider.Search(ctx, query, p.cfg.Options) {
				if err != nil {
					return fmt.Errorf("search %q: %w", query, err)
				}

				position++
				rec := &storage.Record{
					ID:          uuid.NewString(),
					SessionID:   sessionID,
					Query:       query,
					Position:    position,
					URL:         res.URL,
					Title:       res.Title,
					Description: res.Description,
					CreatedAt:   time.Now().UTC(),
				}

				if p.cfg.Backend != nil {
					if err := p.cfg.Backend.Save(ctx, rec); err != nil {
						return fmt.Errorf("save result for %q: %w", query, err)
					}
				}

				results = append(results, res)
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}

			if len(p.cfg.Terms) > 0 {
				found := analyzer.MatchTerms(results, p.cfg.Terms)
				mu.Lock()
				matches = append(matches, found...)
				mu.Unlock()
			}

			p.cfg.Logger.Info("query complete",
				"session_id", sessionID,
				"query", query,
				"results", position)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		SessionID: sessionID,
		Records:   records,
		Matches:   matches,
	}, nil
}
