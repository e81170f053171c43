package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyloom/internal/store"
)

// RecentMessages returns up to limit messages newest-first, matching the
// Postgres backend's ordering contract.
func (c *Client) RecentMessages(ctx context.Context, sessionID string, limit int) ([]store.Message, error) {
	q := `SELECT id, session_id, author, content, created_at
FROM messages WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := c.db.QueryContext(ctx, q, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []store.Message{}
	for rows.Next() {
		var m store.Message
		var created string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Author, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
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
	q := `INSERT INTO messages (id, session_id, author, content, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, q, id, m.SessionID, string(m.Author), m.Content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}
	return id, nil
}
