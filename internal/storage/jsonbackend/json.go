// Package jsonbackend stores search result records as newline-delimited JSON.
package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/quarry/internal/storage"
)

var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New opens (creating if needed) an NDJSON file as a storage.Backend.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open ndjson file: %w", err)
	}

	return &jsonBackend{file: f}, nil
}

func (b *jsonBackend) Save(ctx context.Context, rec *storage.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	return nil
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek ndjson file: %w", err)
	}
	defer func() {
		// Restore the pointer to the end for subsequent appends.
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	// Filtering, ordering, and limit/offset are done in memory; a flat file
	// has no query engine.
	var matched []*storage.Record

	scanner := bufio.NewScanner(b.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r storage.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}

		if !matches(&r, filter) {
			continue
		}
		matched = append(matched, &r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ndjson file: %w", err)
	}

	return window(matched, filter), nil
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}

func matches(r *storage.Record, filter storage.Filter) bool {
	if filter.Query != "" && r.Query != filter.Query {
		return false
	}
	if filter.URL != "" && r.URL != filter.URL {
		return false
	}
	if filter.Since != nil && r.CreatedAt.Before(*filter.Since) {
		return false
	}
	return true
}

// window orders newest-first and applies offset/limit.
func window(records []*storage.Record, filter storage.Filter) []*storage.Record {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return []*storage.Record{}
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records
}
