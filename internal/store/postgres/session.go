package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storyloom/internal/store"
)

func (c *Client) GetWorld(ctx context.Context, worldID string) (*store.World, error) {
	sql := `SELECT id, name, tone, setting, description FROM worlds WHERE id = $1`

	var w store.World
	err := c.pool.QueryRow(ctx, sql, worldID).Scan(&w.ID, &w.Name, &w.Tone, &w.Setting, &w.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting world: %w", err)
	}
	return &w, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*store.Session, error) {
	sql := `SELECT id, world_id, created_at, ended_at FROM sessions WHERE id = $1`

	var s store.Session
	err := c.pool.QueryRow(ctx, sql, sessionID).Scan(&s.ID, &s.WorldID, &s.CreatedAt, &s.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &s, nil
}
