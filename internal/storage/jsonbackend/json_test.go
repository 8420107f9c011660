package jsonbackend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/quarry/internal/storage"
)

func TestJSONBackend_RoundTrip(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "records.ndjson"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		rec := &storage.Record{
			ID:        string(rune('a' + i)),
			SessionID: "s1",
			Query:     "ndjson",
			Position:  i + 1,
			URL:       "https://example.com/" + string(rune('a'+i)),
			Title:     "T",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := b.Save(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	// Newest first.
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("expected newest-first ordering, got %s..%s", all[0].ID, all[2].ID)
	}
}

func TestJSONBackend_FilterAndWindow(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "records.ndjson"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	queries := []string{"x", "y", "x", "x"}
	for i, q := range queries {
		rec := &storage.Record{
			ID:        string(rune('a' + i)),
			Query:     q,
			URL:       "https://example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := b.Save(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	xs, err := b.Query(ctx, storage.Filter{Query: "x"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(xs) != 3 {
		t.Errorf("expected 3 'x' records, got %d", len(xs))
	}

	paged, err := b.Query(ctx, storage.Filter{Query: "x", Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected 1 windowed record, got %d", len(paged))
	}
	if paged[0].ID != "c" {
		t.Errorf("expected second-newest 'x' record (c), got %s", paged[0].ID)
	}

	since := base.Add(1500 * time.Millisecond)
	recent, err := b.Query(ctx, storage.Filter{Since: &since})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 recent records, got %d", len(recent))
	}
}

func TestJSONBackend_QueryThenAppend(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "records.ndjson"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()

	if err := b.Save(ctx, &storage.Record{ID: "a", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := b.Query(ctx, storage.Filter{}); err != nil {
		t.Fatalf("query: %v", err)
	}
	// The query rewinds the file; appending afterwards must not clobber.
	if err := b.Save(ctx, &storage.Record{ID: "b", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("save after query: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records after interleaved query/save, got %d", len(all))
	}
}
