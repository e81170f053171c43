package postgres

import (
	"context"
	"fmt"

	"storyloom/internal/store"
)

const ddl = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS worlds (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name        TEXT NOT NULL,
	tone        TEXT NOT NULL DEFAULT '',
	setting     TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sessions (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	world_id   UUID NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS players (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	session_id     UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	appearance     TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	dynamic_fields JSONB NOT NULL DEFAULT '{}',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT uq_player_session UNIQUE (session_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id         UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	author     TEXT NOT NULL CHECK (author IN ('player', 'dm')),
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_session_time ON messages (session_id, created_at DESC);

CREATE TABLE IF NOT EXISTS world_player_fields (
	world_id      UUID NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	field_name    TEXT NOT NULL,
	field_type    TEXT NOT NULL CHECK (field_type IN ('number', 'text')),
	hidden        BOOLEAN NOT NULL DEFAULT FALSE,
	display_order INTEGER NOT NULL DEFAULT 0,
	default_value TEXT NOT NULL DEFAULT '',
	CONSTRAINT uq_world_field UNIQUE (world_id, field_name)
);
`

// canonTableDDL builds one canon category table. All seven share the base
// shape; the extra columns give items, rules, and npcs their type-specific
// attributes.
func canonTableDDL(category store.Category) string {
	extra := ""
	switch category {
	case store.CategoryItems:
		extra = ",\n\tis_unique BOOLEAN NOT NULL DEFAULT FALSE"
	case store.CategoryRules:
		extra = ",\n\tis_priority BOOLEAN NOT NULL DEFAULT FALSE"
	case store.CategoryNPCs:
		extra = ",\n\tpersonality TEXT NOT NULL DEFAULT '',\n\tmotivations TEXT NOT NULL DEFAULT ''"
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	world_id    UUID NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	aliases     TEXT[] NOT NULL DEFAULT '{}',
	description TEXT NOT NULL DEFAULT '',
	embedding   vector(%[2]d)%[3]s
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_world ON %[1]s (world_id);
`, category, store.EmbeddingDim, extra)
}

// matchFunctionDDL builds the ranked similarity function for one category.
// similarity = 1 - cosine_distance, so results land in [0,1] with higher
// meaning closer; rows that were never vectorized are excluded outright.
func matchFunctionDDL(category store.Category) string {
	extraCols, extraSelect := "", ""
	switch category {
	case store.CategoryItems:
		extraCols = ", is_unique BOOLEAN"
		extraSelect = ", t.is_unique"
	case store.CategoryRules:
		extraCols = ", is_priority BOOLEAN"
		extraSelect = ", t.is_priority"
	case store.CategoryNPCs:
		extraCols = ", personality TEXT, motivations TEXT"
		extraSelect = ", t.personality, t.motivations"
	}
	return fmt.Sprintf(`
CREATE OR REPLACE FUNCTION match_%[1]s(
	query_embedding vector(%[2]d),
	target_world UUID,
	match_count INT,
	match_threshold FLOAT
)
RETURNS TABLE (id UUID, world_id UUID, name TEXT, aliases TEXT[], description TEXT%[3]s, similarity FLOAT)
LANGUAGE sql STABLE AS $$
	SELECT t.id, t.world_id, t.name, t.aliases, t.description%[4]s,
		1 - (t.embedding <=> query_embedding) AS similarity
	FROM %[1]s t
	WHERE t.world_id = target_world
		AND t.embedding IS NOT NULL
		AND 1 - (t.embedding <=> query_embedding) >= match_threshold
	ORDER BY similarity DESC
	LIMIT match_count;
$$;
`, category, store.EmbeddingDim, extraCols, extraSelect)
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	for _, category := range store.Categories() {
		if _, err := c.pool.Exec(ctx, canonTableDDL(category)); err != nil {
			return fmt.Errorf("ensuring %s table: %w", category, err)
		}
		if _, err := c.pool.Exec(ctx, matchFunctionDDL(category)); err != nil {
			return fmt.Errorf("ensuring match_%s: %w", category, err)
		}
	}
	return nil
}
