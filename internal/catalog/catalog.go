// Package catalog is the on-disk index of known tracks and their
// fingerprint postings: a thin layer over database/sql backed by
// Postgres via pgx, plus a bounded-staleness stats cache and a
// read-through track cache.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const statsCacheTTL = 60 * time.Second

// Store is safe for concurrent use by many readers and a single
// writer (the ingestion coordinator). Concurrent writers are not
// serialized beyond what Postgres itself provides.
type Store struct {
	db *sql.DB

	trackCache sync.Map // audio_file_path -> TrackInfo

	statsMu     sync.Mutex
	statsCached Stats
	statsAt     time.Time
}

// Open connects to dsn, verifies reachability, ensures the schema
// exists and matches the binary's expected layout version.
func Open(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening connection: %v", ErrTransient, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting: %v", ErrTransient, err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) invalidateTrackCache(audioFilePath string) {
	s.trackCache.Delete(audioFilePath)
}

func (s *Store) invalidateStats() {
	s.statsMu.Lock()
	s.statsAt = time.Time{}
	s.statsMu.Unlock()
}

func classifyPgError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key"):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case strings.Contains(msg, "connection"), strings.Contains(msg, "EOF"):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return err
	}
}
