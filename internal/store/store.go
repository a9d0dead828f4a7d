// Package store persists barcode-to-nutrition mappings: a local sqlite
// cache fronting an optional remote product database, plus an asynchronous
// writer so label-derived facts can be recorded without blocking the
// estimate path.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

const schema = `
CREATE TABLE IF NOT EXISTS nutrition_codes (
	code       TEXT PRIMARY KEY,
	facts      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store is the local nutrition-code cache.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the cache database at path. The
// special path ":memory:" yields an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty store path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// The writer goroutine and lookup path may touch the db concurrently;
	// sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the cached estimate for a code, or nil on a miss.
func (s *Store) Get(ctx context.Context, code string) (*nutrition.Estimate, error) {
	var facts string
	err := s.db.QueryRowContext(ctx,
		`SELECT facts FROM nutrition_codes WHERE code = ?`, code).Scan(&facts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read code %q: %w", code, err)
	}
	var est nutrition.Estimate
	if err := json.Unmarshal([]byte(facts), &est); err != nil {
		return nil, fmt.Errorf("decode cached facts for %q: %w", code, err)
	}
	return &est, nil
}

// Put stores or replaces the estimate for a code.
func (s *Store) Put(ctx context.Context, code string, est *nutrition.Estimate) error {
	if code == "" || est == nil || est.IsEmpty() {
		return errors.New("nothing to store")
	}
	facts, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("encode facts for %q: %w", code, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nutrition_codes (code, facts, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET facts = excluded.facts, updated_at = excluded.updated_at`,
		code, string(facts), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write code %q: %w", code, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
