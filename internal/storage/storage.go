// Package storage persists search results yielded by a provider so runs can
// be queried later.
package storage

import (
	"context"
	"time"
)

// Record is one persisted search result: which query produced it, where it
// ranked in that query's stream, and the extracted page fields.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"` // groups the records of one run
	Query       string    `json:"query"`
	Position    int       `json:"position"` // 1-based rank within the query
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter selects records when querying a backend. Zero fields match
// everything.
type Filter struct {
	Query  string
	URL    string
	Since  *time.Time
	Limit  int
	Offset int
}

// Backend stores and queries search result records.
type Backend interface {
	Save(ctx context.Context, rec *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
