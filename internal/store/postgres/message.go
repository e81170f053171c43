package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storyloom/internal/store"
)

// RecentMessages returns up to limit messages newest-first. Callers that
// render conversation history reverse to chronological order themselves.
func (c *Client) RecentMessages(ctx context.Context, sessionID string, limit int) ([]store.Message, error) {
	sql := `SELECT id, session_id, author, content, created_at
FROM messages WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := c.pool.Query(ctx, sql, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []store.Message{}
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Author, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

func (c *Client) InsertMessage(ctx context.Context, m store.MessageInput) (string, error) {
	id := uuid.NewString()
	sql := `INSERT INTO messages (id, session_id, author, content, created_at)
VALUES ($1, $2, $3, $4, now())`

	if _, err := c.pool.Exec(ctx, sql, id, m.SessionID, string(m.Author), m.Content); err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}
	return id, nil
}
