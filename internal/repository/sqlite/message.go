package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/embercortex/embercortex/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts a new message at the next position of its session.
// Messages are never updated after this.
func (r *MessageRepository) Append(ctx context.Context, msg domain.AppendMessage) (int64, error) {
	query := `
		INSERT INTO chat_history (session_id, role, content, collection, model, response_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.conn.ExecContext(ctx, query,
		msg.SessionID,
		string(msg.Role),
		msg.Content,
		nullString(msg.Collection),
		nullString(msg.Model),
		msg.ResponseTime,
		formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return id, nil
}

// ListBySession retrieves the most recent limit messages of a session in
// chronological order (oldest of the window first).
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, collection, model, response_time, created_at
		FROM chat_history
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.conn.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	// Reverse to return chronological order (oldest first)
	// because we ordered by DESC to get the *latest* N messages
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// ListRecentSessions summarizes sessions ordered by most recent activity
func (r *MessageRepository) ListRecentSessions(ctx context.Context, limit int) ([]domain.SessionSummary, error) {
	query := `
		SELECT session_id,
		       MIN(created_at) AS started,
		       MAX(created_at) AS last_message,
		       COUNT(*) AS message_count,
		       (SELECT content FROM chat_history h2
		        WHERE h2.session_id = chat_history.session_id AND h2.role = 'user'
		        ORDER BY h2.created_at ASC, h2.id ASC LIMIT 1) AS first_message
		FROM chat_history
		GROUP BY session_id
		ORDER BY last_message DESC
		LIMIT ?
	`

	rows, err := r.db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.SessionSummary
	for rows.Next() {
		var s domain.SessionSummary
		var started, last string
		var first sql.NullString

		if err := rows.Scan(&s.SessionID, &started, &last, &s.MessageCount, &first); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if s.LastMessageAt, err = parseTime(last); err != nil {
			return nil, err
		}
		s.FirstMessage = first.String

		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes all messages of a session. Deleting a session
// that does not exist is a no-op.
func (r *MessageRepository) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.conn.ExecContext(ctx, `DELETE FROM chat_history WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	var role, createdAt string
	var collection, model sql.NullString
	var responseTime sql.NullFloat64

	if err := row.Scan(&m.ID, &m.SessionID, &role, &m.Content, &collection, &model, &responseTime, &createdAt); err != nil {
		return domain.Message{}, fmt.Errorf("failed to scan message: %w", err)
	}

	m.Role = domain.MessageRole(role)
	m.Collection = collection.String
	m.Model = model.String
	if responseTime.Valid {
		m.ResponseTime = &responseTime.Float64
	}

	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Message{}, err
	}

	return m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
