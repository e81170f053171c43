package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storyloom/internal/store"
)

func (c *Client) GetPlayer(ctx context.Context, sessionID string) (*store.Player, error) {
	q := `SELECT id, session_id, name, appearance, state, dynamic_fields, updated_at
FROM players WHERE session_id = ?`

	var p store.Player
	var fieldsJSON, updated string
	err := c.db.QueryRowContext(ctx, q, sessionID).Scan(&p.ID, &p.SessionID, &p.Name, &p.Appearance, &p.State, &fieldsJSON, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &p.DynamicFields); err != nil {
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

	q := `UPDATE players SET dynamic_fields = ?, updated_at = ? WHERE id = ?`
	res, err := c.db.ExecContext(ctx, q, string(fieldsJSON), time.Now().UTC().Format(time.RFC3339Nano), playerID)
	if err != nil {
		return fmt.Errorf("updating player fields: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating player fields: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating player fields: no player with id %s", playerID)
	}
	return nil
}

func (c *Client) ListPlayerFields(ctx context.Context, worldID string) ([]store.PlayerField, error) {
	q := `SELECT world_id, field_name, field_type, hidden, display_order, default_value
FROM world_player_fields WHERE world_id = ? ORDER BY display_order, field_name`

	rows, err := c.db.QueryContext(ctx, q, worldID)
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
