package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// AppendTurn durably appends one turn to a thread's log. Append is the only
// mutation on turns; rows are never updated or deleted.
func (s *Store) AppendTurn(ctx context.Context, threadID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (thread_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		threadID, role, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("appending turn to thread %s: %w", threadID, err)
	}
	return nil
}

// LoadTurns reconstructs a thread's history in append order. Unknown threads
// yield an empty slice, not an error. A positive limit keeps only the most
// recent turns, still in append order.
func (s *Store) LoadTurns(ctx context.Context, threadID string, limit int) ([]Turn, error) {
	query := `SELECT id, thread_id, role, content, created_at FROM turns WHERE thread_id = ? ORDER BY id`
	args := []any{threadID}
	if limit > 0 {
		query = `SELECT id, thread_id, role, content, created_at FROM (
			SELECT id, thread_id, role, content, created_at FROM turns
			WHERE thread_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, limit)
	}

	turns := []Turn{}
	if err := sqlscan.Select(ctx, s.db, &turns, query, args...); err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", threadID, err)
	}
	return turns, nil
}

// ListThreads returns a summary of every stored thread, most recent first.
func (s *Store) ListThreads(ctx context.Context) ([]ThreadInfo, error) {
	threads := []ThreadInfo{}
	err := sqlscan.Select(ctx, s.db, &threads,
		`SELECT thread_id, COUNT(*) AS turn_count, MAX(created_at) AS last_at
		 FROM turns GROUP BY thread_id ORDER BY last_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return threads, nil
}
