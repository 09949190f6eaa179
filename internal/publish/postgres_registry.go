package publish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRegistry looks publishes up in the published_files table.
type PostgresRegistry struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// NewPostgres connects to dsn and verifies the connection.
func NewPostgres(dsn string) (*PostgresRegistry, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("publish: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("publish: ping postgres: %w", err)
	}
	return &PostgresRegistry{db: db}, nil
}

// Close releases the connection pool.
func (r *PostgresRegistry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PostgresRegistry) ensureSchema(ctx context.Context) error {
	r.schemaOnce.Do(func() {
		_, r.schemaErr = r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS published_files (
  id SERIAL PRIMARY KEY,
  project_id TEXT NOT NULL,
  code TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  UNIQUE (project_id, code)
);
CREATE INDEX IF NOT EXISTS idx_published_files_code ON published_files (code);
`)
	})
	return r.schemaErr
}

// IsPublished reports whether code is recorded for projectID.
func (r *PostgresRegistry) IsPublished(ctx context.Context, projectID, code string) (bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return false, fmt.Errorf("publish: ensure schema: %w", err)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM published_files
WHERE project_id = $1 AND code = $2 LIMIT 1`,
		strings.TrimSpace(projectID), strings.TrimSpace(code)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("publish: query: %w", err)
	}
	return true, nil
}

// Record inserts a publish, ignoring duplicates.
func (r *PostgresRegistry) Record(ctx context.Context, projectID, code string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return fmt.Errorf("publish: ensure schema: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO published_files (project_id, code)
VALUES ($1, $2)
ON CONFLICT (project_id, code) DO NOTHING`,
		strings.TrimSpace(projectID), strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("publish: insert: %w", err)
	}
	return nil
}
