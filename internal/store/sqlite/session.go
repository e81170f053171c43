package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storyloom/internal/store"
)

// sqlite stores timestamps as RFC 3339 text.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func (c *Client) GetWorld(ctx context.Context, worldID string) (*store.World, error) {
	q := `SELECT id, name, tone, setting, description FROM worlds WHERE id = ?`

	var w store.World
	err := c.db.QueryRowContext(ctx, q, worldID).Scan(&w.ID, &w.Name, &w.Tone, &w.Setting, &w.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting world: %w", err)
	}
	return &w, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*store.Session, error) {
	q := `SELECT id, world_id, created_at, ended_at FROM sessions WHERE id = ?`

	var s store.Session
	var created string
	var ended sql.NullString
	err := c.db.QueryRowContext(ctx, q, sessionID).Scan(&s.ID, &s.WorldID, &created, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if ended.Valid {
		t, err := parseTime(ended.String)
		if err != nil {
			return nil, fmt.Errorf("getting session: %w", err)
		}
		s.EndedAt = &t
	}
	return &s, nil
}
