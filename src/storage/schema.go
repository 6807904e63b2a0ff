package storage

import "time"

// Turn roles. Tool exchanges live only inside a single completion and are not
// persisted; the durable log carries the user/assistant transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one immutable message in a conversation thread.
type Turn struct {
	ID        int64     `db:"id"`
	ThreadID  string    `db:"thread_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// ThreadInfo summarizes one stored thread.
type ThreadInfo struct {
	ThreadID  string    `db:"thread_id"`
	TurnCount int       `db:"turn_count"`
	LastAt    time.Time `db:"last_at"`
}
