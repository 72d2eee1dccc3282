package domain

import (
	"context"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents one entry in a session's chat history.
// Messages are immutable once written.
type Message struct {
	ID           int64       `json:"id"`
	SessionID    string      `json:"session_id"`
	Role         MessageRole `json:"role"`
	Content      string      `json:"content"`
	Collection   string      `json:"collection,omitempty"`
	Model        string      `json:"model,omitempty"`
	ResponseTime *float64    `json:"response_time,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// SessionSummary describes one session in the recent-sessions listing
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	FirstMessage  string    `json:"first_message"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int       `json:"message_count"`
}

// AppendMessage carries the fields for one history append
type AppendMessage struct {
	SessionID    string
	Role         MessageRole
	Content      string
	Collection   string
	Model        string
	ResponseTime *float64
}

// MessageRepository defines the interface for chat history storage.
// Appends are the only write path; history is never updated in place.
type MessageRepository interface {
	Append(ctx context.Context, msg AppendMessage) (int64, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Message, error)
	ListRecentSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
