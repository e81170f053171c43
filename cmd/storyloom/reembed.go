package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storyloom/internal/store"
)

// embedBatchSize keeps re-embed requests inside the embedding API's
// per-call content limit.
const embedBatchSize = 32

func reembedCmd() *cobra.Command {
	var worldID string
	var category string
	cmd := &cobra.Command{
		Use:   "reembed",
		Short: "Recompute canon embeddings for a world",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(worldID) == "" {
				return fmt.Errorf("--world is required")
			}
			return runReembed(worldID, category)
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "World ID")
	cmd.Flags().StringVar(&category, "category", "", "Restrict to one canon category")
	return cmd
}

func runReembed(worldID, category string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	world, err := a.db.GetWorld(ctx, worldID)
	if err != nil {
		return err
	}
	if world == nil {
		return fmt.Errorf("no world with id %s", worldID)
	}

	categories := store.Categories()
	if category != "" {
		categories = nil
		for _, c := range store.Categories() {
			if string(c) == category {
				categories = []store.Category{c}
			}
		}
		if categories == nil {
			return fmt.Errorf("unknown category %q", category)
		}
	}

	for _, c := range categories {
		if err := reembedCategory(ctx, a, worldID, c); err != nil {
			return err
		}
	}
	return nil
}

func reembedCategory(ctx context.Context, a *app, worldID string, category store.Category) error {
	entities, err := a.db.ListEntities(ctx, worldID, category)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		return nil
	}

	for start := 0; start < len(entities); start += embedBatchSize {
		end := min(start+embedBatchSize, len(entities))
		batch := entities[start:end]

		texts := make([]string, len(batch))
		for i, entity := range batch {
			texts[i] = embedText(entity)
		}
		vectors, err := a.model.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding %s batch: %w", category, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding %s batch: got %d vectors for %d texts", category, len(vectors), len(batch))
		}

		for i, entity := range batch {
			if err := a.db.UpdateEntityEmbedding(ctx, category, entity.ID, vectors[i]); err != nil {
				return err
			}
		}
	}

	a.log.Info("reembedded category",
		zap.String("world", worldID),
		zap.String("category", string(category)),
		zap.Int("entities", len(entities)))
	return nil
}

// embedText is the document-side text an entity is indexed under. It carries
// the same fields the prompt renders for the entity so that query and
// document live in the same vocabulary.
func embedText(e store.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", e.Name, e.Category)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(&b, ", also known as: %s", strings.Join(e.Aliases, ", "))
	}
	if e.Description != "" {
		fmt.Fprintf(&b, ". %s", e.Description)
	}
	if e.Category == store.CategoryNPCs {
		if e.Personality != "" {
			fmt.Fprintf(&b, " Personality: %s.", e.Personality)
		}
		if e.Motivations != "" {
			fmt.Fprintf(&b, " Motivations: %s.", e.Motivations)
		}
	}
	return b.String()
}
