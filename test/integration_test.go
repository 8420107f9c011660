//go:build integration

package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/FranksOps/quarry/internal/fingerprint"
	"github.com/FranksOps/quarry/internal/pipeline"
	"github.com/FranksOps/quarry/internal/report"
	"github.com/FranksOps/quarry/internal/serp"
	"github.com/FranksOps/quarry/internal/storage"
	"github.com/FranksOps/quarry/internal/storage/sqlite"
)

// resultBlock renders one result container in the endpoint's markup.
func resultBlock(target, title, desc string) string {
	return fmt.Sprintf(
		`<div class="ezO2md"><a href="/url?q=%s&sa=U&ved=2ahUKE"><span class="CVA68e">%s</span></a><span class="FrIlee">%s</span></div>`,
		url.QueryEscape(target), title, desc,
	)
}

func TestIntegration_SearchToStorage(t *testing.T) {
	// 1. Fake search endpoint: two pages for "golang", one for "pasta".
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>`)
		switch {
		case query == "golang" && start == 0:
			fmt.Fprint(w, resultBlock("https://go.dev", "The Go Programming Language", "Build simple, secure systems with Go."))
			fmt.Fprint(w, resultBlock("https://pkg.go.dev", "Go Packages", "Discover packages."))
		case query == "golang" && start == 10:
			fmt.Fprint(w, resultBlock("https://go.dev/blog", "The Go Blog", "News from the Go project."))
		case query == "pasta" && start == 0:
			fmt.Fprint(w, resultBlock("https://pasta.example", "Fresh Pasta", "Secure your dinner."))
		}
		fmt.Fprint(w, `</body></html>`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	// 2. Wire provider, backend, pipeline.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider := serp.NewGoogle(serp.Config{
		BaseURL:     server.URL + "/search",
		Fingerprint: fingerprint.ProfileGo,
		Logger:      logger,
	})

	backend, err := sqlite.New(filepath.Join(t.TempDir(), "quarry.db"))
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	defer backend.Close()

	p, err := pipeline.New(pipeline.Config{
		Provider: provider,
		Backend:  backend,
		Options: serp.Options{
			NumResults:    3,
			SleepInterval: 10 * time.Millisecond,
		},
		Terms:       []string{"secure"},
		Concurrency: 2,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("create pipeline: %v", err)
	}

	// 3. Run and verify the in-memory result.
	res, err := p.Run(context.Background(), []string{"golang", "pasta"})
	if err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	if len(res.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(res.Records))
	}

	// "secure" appears in one golang description and one pasta description.
	if len(res.Matches) != 2 {
		t.Errorf("expected 2 term matches, got %d", len(res.Matches))
	}

	// 4. Verify persistence through the backend's own query path.
	stored, err := backend.Query(context.Background(), storage.Filter{Query: "golang"})
	if err != nil {
		t.Fatalf("query backend: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored golang records, got %d", len(stored))
	}
	for _, rec := range stored {
		if rec.SessionID != res.SessionID {
			t.Errorf("stored record has session %s, want %s", rec.SessionID, res.SessionID)
		}
		if rec.URL == "" || rec.Title == "" {
			t.Errorf("stored record missing fields: %+v", rec)
		}
	}

	// 5. Summarize everything persisted this run.
	all, err := backend.Query(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("query backend: %v", err)
	}
	summary := report.GenerateSummary(all)
	if summary.TotalResults != 4 {
		t.Errorf("summary total = %d, want 4", summary.TotalResults)
	}
	if summary.Queries["golang"] != 3 || summary.Queries["pasta"] != 1 {
		t.Errorf("unexpected per-query counts: %v", summary.Queries)
	}
	if summary.Domains["go.dev"] != 2 {
		t.Errorf("expected 2 go.dev results, got %d", summary.Domains["go.dev"])
	}
}

func TestIntegration_BlockedEndpointSurfacesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sorry", http.StatusTooManyRequests)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider := serp.NewGoogle(serp.Config{
		BaseURL:     server.URL,
		Fingerprint: fingerprint.ProfileGo,
		Logger:      logger,
	})

	p, err := pipeline.New(pipeline.Config{Provider: provider, Logger: logger})
	if err != nil {
		t.Fatalf("create pipeline: %v", err)
	}

	if _, err := p.Run(context.Background(), []string{"anything"}); err == nil {
		t.Fatal("expected pipeline run to fail against a blocking endpoint")
	}
}
