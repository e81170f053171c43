package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storyloom/internal/store"
)

// baseColumns are shared by every canon table; the extra columns vary per
// category and drive both the select lists and the scan targets below.
const baseColumns = "id, world_id, name, aliases, description"

func selectColumns(category store.Category) string {
	switch category {
	case store.CategoryItems:
		return baseColumns + ", is_unique"
	case store.CategoryRules:
		return baseColumns + ", is_priority"
	case store.CategoryNPCs:
		return baseColumns + ", personality, motivations"
	default:
		return baseColumns
	}
}

func scanEntity(rows pgx.Rows, category store.Category, extra ...any) (store.Entity, error) {
	e := store.Entity{Category: category}
	targets := []any{&e.ID, &e.WorldID, &e.Name, &e.Aliases, &e.Description}
	switch category {
	case store.CategoryItems:
		targets = append(targets, &e.IsUnique)
	case store.CategoryRules:
		targets = append(targets, &e.IsPriority)
	case store.CategoryNPCs:
		targets = append(targets, &e.Personality, &e.Motivations)
	}
	targets = append(targets, extra...)
	if err := rows.Scan(targets...); err != nil {
		return store.Entity{}, fmt.Errorf("scanning %s row: %w", category, err)
	}
	if e.Aliases == nil {
		e.Aliases = []string{}
	}
	return e, nil
}

func (c *Client) MatchEntities(ctx context.Context, worldID string, category store.Category, query []float32, limit int, threshold float64) ([]store.RetrievalResult, error) {
	sql := fmt.Sprintf("SELECT %s, similarity FROM match_%s($1::vector, $2, $3, $4)", selectColumns(category), category)

	rows, err := c.pool.Query(ctx, sql, vectorLiteral(query), worldID, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", category, err)
	}
	defer rows.Close()

	results := []store.RetrievalResult{}
	for rows.Next() {
		var similarity float64
		entity, err := scanEntity(rows, category, &similarity)
		if err != nil {
			return nil, err
		}
		results = append(results, store.RetrievalResult{Entity: entity, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s matches: %w", category, err)
	}
	return results, nil
}

func (c *Client) ListEntities(ctx context.Context, worldID string, category store.Category) ([]store.Entity, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE world_id = $1 ORDER BY name", selectColumns(category), category)

	rows, err := c.pool.Query(ctx, sql, worldID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}
	defer rows.Close()

	entities := []store.Entity{}
	for rows.Next() {
		entity, err := scanEntity(rows, category)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", category, err)
	}
	return entities, nil
}

func (c *Client) UpdateEntityEmbedding(ctx context.Context, category store.Category, entityID string, embedding []float32) error {
	sql := fmt.Sprintf("UPDATE %s SET embedding = $1::vector WHERE id = $2", category)
	tag, err := c.pool.Exec(ctx, sql, vectorLiteral(embedding), entityID)
	if err != nil {
		return fmt.Errorf("updating %s embedding: %w", category, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating %s embedding: no row with id %s", category, entityID)
	}
	return nil
}
