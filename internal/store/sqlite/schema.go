package sqlite

import (
	"context"
	"fmt"

	"storyloom/internal/store"
)

const ddl = `
CREATE TABLE IF NOT EXISTS worlds (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	tone        TEXT NOT NULL DEFAULT '',
	setting     TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	world_id   TEXT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	ended_at   TEXT
);

CREATE TABLE IF NOT EXISTS players (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL UNIQUE REFERENCES sessions(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	appearance     TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	dynamic_fields TEXT NOT NULL DEFAULT '{}',
	updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	author     TEXT NOT NULL CHECK (author IN ('player', 'dm')),
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session_time ON messages (session_id, created_at DESC);

CREATE TABLE IF NOT EXISTS world_player_fields (
	world_id      TEXT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	field_name    TEXT NOT NULL,
	field_type    TEXT NOT NULL CHECK (field_type IN ('number', 'text')),
	hidden        INTEGER NOT NULL DEFAULT 0,
	display_order INTEGER NOT NULL DEFAULT 0,
	default_value TEXT NOT NULL DEFAULT '',
	CONSTRAINT uq_world_field UNIQUE (world_id, field_name)
);
`

func canonTableDDL(category store.Category) string {
	extra := ""
	switch category {
	case store.CategoryItems:
		extra = ",\n\tis_unique INTEGER NOT NULL DEFAULT 0"
	case store.CategoryRules:
		extra = ",\n\tis_priority INTEGER NOT NULL DEFAULT 0"
	case store.CategoryNPCs:
		extra = ",\n\tpersonality TEXT NOT NULL DEFAULT '',\n\tmotivations TEXT NOT NULL DEFAULT ''"
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id          TEXT PRIMARY KEY,
	world_id    TEXT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	aliases     TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	embedding   TEXT%[2]s
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_world ON %[1]s (world_id);
`, category, extra)
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	for _, category := range store.Categories() {
		if _, err := c.db.ExecContext(ctx, canonTableDDL(category)); err != nil {
			return fmt.Errorf("ensuring %s table: %w", category, err)
		}
	}
	return nil
}
