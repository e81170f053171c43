package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"storyloom/internal/store"
)

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

func scanEntity(rows *sql.Rows, category store.Category, extra ...any) (store.Entity, error) {
	e := store.Entity{Category: category}
	var aliases string
	targets := []any{&e.ID, &e.WorldID, &e.Name, &aliases, &e.Description}
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
	if err := json.Unmarshal([]byte(aliases), &e.Aliases); err != nil {
		return store.Entity{}, fmt.Errorf("decoding %s aliases: %w", category, err)
	}
	if e.Aliases == nil {
		e.Aliases = []string{}
	}
	return e, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has zero magnitude or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MatchEntities scans every embedded entity in the category and ranks by
// cosine similarity in process. Fine for the corpus sizes sqlite is meant
// for; Postgres handles this inside match_* functions instead.
func (c *Client) MatchEntities(ctx context.Context, worldID string, category store.Category, query []float32, limit int, threshold float64) ([]store.RetrievalResult, error) {
	q := fmt.Sprintf("SELECT %s, embedding FROM %s WHERE world_id = ? AND embedding IS NOT NULL", selectColumns(category), category)

	rows, err := c.db.QueryContext(ctx, q, worldID)
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", category, err)
	}
	defer rows.Close()

	results := []store.RetrievalResult{}
	for rows.Next() {
		var raw string
		entity, err := scanEntity(rows, category, &raw)
		if err != nil {
			return nil, err
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
			return nil, fmt.Errorf("decoding %s embedding: %w", category, err)
		}
		similarity := cosineSimilarity(query, embedding)
		if similarity < threshold {
			continue
		}
		results = append(results, store.RetrievalResult{Entity: entity, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s matches: %w", category, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (c *Client) ListEntities(ctx context.Context, worldID string, category store.Category) ([]store.Entity, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE world_id = ? ORDER BY name", selectColumns(category), category)

	rows, err := c.db.QueryContext(ctx, q, worldID)
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
	encoded, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encoding %s embedding: %w", category, err)
	}
	q := fmt.Sprintf("UPDATE %s SET embedding = ? WHERE id = ?", category)
	res, err := c.db.ExecContext(ctx, q, string(encoded), entityID)
	if err != nil {
		return fmt.Errorf("updating %s embedding: %w", category, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s embedding: %w", category, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s embedding: no row with id %s", category, entityID)
	}
	return nil
}
