package store

import (
	"context"
	"fmt"
	"time"
)

// ChatMessage is one entry in a user's chat history.
// Role is either "user" or "assistant".
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateMessage appends a message to the user's chat history.
func (s *Store) CreateMessage(ctx context.Context, userID int64, role, content string) (*ChatMessage, error) {
	query := `
		INSERT INTO chat_history (user_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp`

	m := &ChatMessage{UserID: userID, Role: role, Content: content}
	if err := s.pool.QueryRow(ctx, query, userID, role, content).Scan(&m.ID, &m.Timestamp); err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	return m, nil
}

// ListMessages returns the user's full chat history, oldest first.
func (s *Store) ListMessages(ctx context.Context, userID int64) ([]*ChatMessage, error) {
	query := `
		SELECT id, user_id, role, content, timestamp
		FROM chat_history
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC`

	return s.queryMessages(ctx, query, userID)
}

// ListRecentMessages returns the user's most recent messages in
// chronological order, limited to the given count.
func (s *Store) ListRecentMessages(ctx context.Context, userID int64, limit int) ([]*ChatMessage, error) {
	query := `
		SELECT id, user_id, role, content, timestamp FROM (
			SELECT id, user_id, role, content, timestamp
			FROM chat_history
			WHERE user_id = $1
			ORDER BY timestamp DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC, id ASC`

	return s.queryMessages(ctx, query, userID, limit)
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*ChatMessage, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return messages, nil
}
