// Package postgres stores search result records in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/quarry/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS search_results (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	query TEXT NOT NULL,
	position INTEGER NOT NULL,
	url TEXT NOT NULL,
	title TEXT,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_results_query ON search_results(query);
`

// New connects to the given DSN and ensures the schema exists.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, rec *storage.Record) error {
	const query = `
	INSERT INTO search_results (
		id, session_id, query, position, url, title, description, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := b.pool.Exec(ctx, query,
		rec.ID,
		rec.SessionID,
		rec.Query,
		rec.Position,
		rec.URL,
		rec.Title,
		rec.Description,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, session_id, query, position, url, title, description, created_at FROM search_results WHERE 1=1`
	args := []any{}
	param := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND query = $%d`, param)
		args = append(args, filter.Query)
		param++
	}
	if filter.URL != "" {
		query += fmt.Sprintf(` AND url = $%d`, param)
		args = append(args, filter.URL)
		param++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, param)
		args = append(args, *filter.Since)
		param++
	}

	query += ` ORDER BY created_at DESC, position ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, param)
		args = append(args, filter.Limit)
		param++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, param)
		args = append(args, filter.Offset)
		param++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*storage.Record
	for rows.Next() {
		var r storage.Record
		err := rows.Scan(
			&r.ID, &r.SessionID, &r.Query, &r.Position, &r.URL,
			&r.Title, &r.Description, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
