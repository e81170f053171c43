package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storyloom/internal/store"
)

func (c *Client) GetPlayer(ctx context.Context, sessionID string) (*store.Player, error) {
	sql := `SELECT id, session_id, name, appearance, state, dynamic_fields, updated_at
FROM players WHERE session_id = $1`

	var p store.Player
	var fieldsJSON []byte
	err := c.pool.QueryRow(ctx, sql, sessionID).Scan(&p.ID, &p.SessionID, &p.Name, &p.Appearance, &p.State, &fieldsJSON, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &p.DynamicFields); err != nil {
			return nil, fmt.Errorf("unmarshaling dynamic fields: %w", err)
		}
	}
	if p.DynamicFields == nil {
		p.DynamicFields = map[string]any{}
	}
	return &p, nil
}

func (c *Client) UpdatePlayerFields(ctx context.Context, playerID string, fields map[string]any) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling dynamic fields: %w", err)
	}

	sql := `UPDATE players SET dynamic_fields = $1, updated_at = now() WHERE id = $2`
	tag, err := c.pool.Exec(ctx, sql, fieldsJSON, playerID)
	if err != nil {
		return fmt.Errorf("updating player fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating player fields: no player with id %s", playerID)
	}
	return nil
}

func (c *Client) ListPlayerFields(ctx context.Context, worldID string) ([]store.PlayerField, error) {
	sql := `SELECT world_id, field_name, field_type, hidden, display_order, default_value
FROM world_player_fields WHERE world_id = $1 ORDER BY display_order, field_name`

	rows, err := c.pool.Query(ctx, sql, worldID)
	if err != nil {
		return nil, fmt.Errorf("listing player fields: %w", err)
	}
	defer rows.Close()

	fields := []store.PlayerField{}
	for rows.Next() {
		var f store.PlayerField
		if err := rows.Scan(&f.WorldID, &f.Name, &f.Type, &f.Hidden, &f.DisplayOrder, &f.DefaultValue); err != nil {
			return nil, fmt.Errorf("scanning player field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player fields: %w", err)
	}
	return fields, nil
}
