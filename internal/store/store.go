package store

import "context"

// Store is the persistence boundary for a running game. Canon entities are
// read-only from the pipeline's perspective; the only writes are appended
// messages, merged player dynamic fields, and embedding backfill.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	GetWorld(ctx context.Context, worldID string) (*World, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	GetPlayer(ctx context.Context, sessionID string) (*Player, error)
	UpdatePlayerFields(ctx context.Context, playerID string, fields map[string]any) error
	ListPlayerFields(ctx context.Context, worldID string) ([]PlayerField, error)

	// RecentMessages returns up to limit messages newest-first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
	InsertMessage(ctx context.Context, m MessageInput) (string, error)

	// MatchEntities performs a world-scoped similarity search over one
	// category, returning at most limit rows whose similarity meets the
	// threshold, ranked descending. Rows without an embedding never match.
	MatchEntities(ctx context.Context, worldID string, category Category, query []float32, limit int, threshold float64) ([]RetrievalResult, error)

	// ListEntities returns every entity of the world in one category,
	// unranked. Used by the retrieval kill-switch and embedding backfill.
	ListEntities(ctx context.Context, worldID string, category Category) ([]Entity, error)

	UpdateEntityEmbedding(ctx context.Context, category Category, entityID string, embedding []float32) error
}
