package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewThreadID mints a fresh, collision-resistant thread identifier.
func (s *Store) NewThreadID() string {
	return uuid.New().String()
}

// MapMessage records which thread a channel message identifier belongs to.
// Both incoming messages and the assistant's outgoing replies are mapped, so
// a later reply to either side of the exchange resolves to the same thread.
// Re-mapping an identifier overwrites the previous entry.
func (s *Store) MapMessage(ctx context.Context, messageID, threadID string) error {
	if messageID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO thread_index (message_id, thread_id, created_at) VALUES (?, ?, ?)`,
		messageID, threadID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mapping message %s to thread %s: %w", messageID, threadID, err)
	}
	return nil
}

// ResolveThread looks up the thread a message identifier was mapped to.
// Absence is not an error; it returns an empty id and signals "start fresh".
func (s *Store) ResolveThread(ctx context.Context, messageID string) (string, error) {
	var threadID string
	err := s.db.QueryRowContext(ctx,
		`SELECT thread_id FROM thread_index WHERE message_id = ?`, messageID).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving message %s: %w", messageID, err)
	}
	return threadID, nil
}
