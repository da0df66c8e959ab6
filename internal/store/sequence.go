package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

const llmEventSequence = "llm_request_events"

// sequenceCounter hands out monotonic IDs per named sequence, starting at
// 1. The upsert with RETURNING is atomic in SQLite; the mutex keeps
// callers in this process from contending on the write lock.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sequences (
		name TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the next value of the named sequence.
func (sc *sequenceCounter) Next(ctx context.Context, name string) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`INSERT INTO sequences (name, next_val) VALUES (?, 2)
		ON CONFLICT (name) DO UPDATE SET next_val = next_val + 1
		RETURNING next_val - 1`,
		name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return seq, nil
}
