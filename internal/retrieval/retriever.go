package retrieval

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storyloom/internal/config"
	"storyloom/internal/store"
)

// Retriever selects the canon context for one turn. Each category is an
// independent bounded search; a category that fails degrades to an empty
// slice rather than aborting the turn, because missing NPC context is better
// than no DM response at all.
type Retriever struct {
	store store.Store
	cfg   *config.Config
	log   *zap.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

func New(st store.Store, cfg *config.Config, log *zap.Logger) *Retriever {
	return &Retriever{
		store: st,
		cfg:   cfg,
		log:   log,
		rand:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Retrieve fans out across every canon category concurrently and joins the
// results. The returned map always has an entry slice (possibly empty) for
// each category; it never fails.
func (r *Retriever) Retrieve(ctx context.Context, worldID string, query []float32) map[store.Category][]store.Entity {
	categories := store.Categories()
	results := make([][]store.Entity, len(categories))

	g, ctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			entities, err := r.retrieveCategory(ctx, worldID, category, query)
			if err != nil {
				r.log.Warn("category retrieval degraded",
					zap.String("world_id", worldID),
					zap.String("category", string(category)),
					zap.Error(err))
				return nil
			}
			results[i] = entities
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; degradation is per-category

	byCategory := make(map[store.Category][]store.Entity, len(categories))
	for i, category := range categories {
		byCategory[category] = results[i]
	}
	return byCategory
}

// Match runs the ranked similarity search for a single category with its
// configured tunables, keeping the scores. Used by Retrieve and exposed for
// relevance debugging.
func (r *Retriever) Match(ctx context.Context, worldID string, category store.Category, query []float32) ([]store.RetrievalResult, error) {
	tunables := r.cfg.RetrievalFor(string(category))
	return r.store.MatchEntities(ctx, worldID, category, query, tunables.TopK, tunables.Threshold)
}

func (r *Retriever) retrieveCategory(ctx context.Context, worldID string, category store.Category, query []float32) ([]store.Entity, error) {
	tunables := r.cfg.RetrievalFor(string(category))

	switch tunables.Mode {
	case config.ModeAll:
		return r.store.ListEntities(ctx, worldID, category)
	case config.ModeRandom:
		entities, err := r.store.ListEntities(ctx, worldID, category)
		if err != nil {
			return nil, err
		}
		return r.sample(entities, tunables.TopK), nil
	default:
		ranked, err := r.store.MatchEntities(ctx, worldID, category, query, tunables.TopK, tunables.Threshold)
		if err != nil {
			return nil, err
		}
		entities := make([]store.Entity, len(ranked))
		for i, result := range ranked {
			entities[i] = result.Entity
		}
		return entities, nil
	}
}

func (r *Retriever) sample(entities []store.Entity, k int) []store.Entity {
	if len(entities) <= k {
		return entities
	}
	sampled := make([]store.Entity, len(entities))
	copy(sampled, entities)
	r.mu.Lock()
	r.rand.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	r.mu.Unlock()
	return sampled[:k]
}
