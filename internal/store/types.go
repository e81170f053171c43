package store

import "time"

// EmbeddingDim is the dimensionality of every stored canon embedding.
// Entities with no embedding carry a nil slice, never a zero vector.
const EmbeddingDim = 1536

// Category identifies one of the canon entity tables.
type Category string

const (
	CategoryItems         Category = "items"
	CategoryLocations     Category = "locations"
	CategoryAbilities     Category = "abilities"
	CategoryNPCs          Category = "npcs"
	CategoryOrganizations Category = "organizations"
	CategoryTaxonomies    Category = "taxonomies"
	CategoryRules         Category = "rules"
)

// Categories returns all canon categories in prompt order.
func Categories() []Category {
	return []Category{
		CategoryItems,
		CategoryLocations,
		CategoryAbilities,
		CategoryOrganizations,
		CategoryTaxonomies,
		CategoryRules,
		CategoryNPCs,
	}
}

type Author string

const (
	AuthorPlayer Author = "player"
	AuthorDM     Author = "dm"
)

type World struct {
	ID          string
	Name        string
	Tone        string
	Setting     string
	Description string
}

// Entity is one canon row from any category table. The type-specific
// fields are meaningful only for their category: IsUnique for items,
// IsPriority for rules, Personality/Motivations for npcs.
type Entity struct {
	ID          string
	WorldID     string
	Category    Category
	Name        string
	Aliases     []string
	Description string
	Embedding   []float32
	IsUnique    bool
	IsPriority  bool
	Personality string
	Motivations string
}

type Session struct {
	ID        string
	WorldID   string
	CreatedAt time.Time
	EndedAt   *time.Time
}

// Player holds the per-session character sheet. DynamicFields is the open
// key→value map of tracked attributes; keys should correspond to a
// PlayerField definition for the world but may contain legacy leftovers.
type Player struct {
	ID            string
	SessionID     string
	Name          string
	Appearance    string
	State         string
	DynamicFields map[string]any
	UpdatedAt     time.Time
}

// PlayerField is the authoritative definition of one tracked attribute.
// Field names are unique within a world and form the whitelist the
// state-update analyzer validates proposed writes against.
type PlayerField struct {
	WorldID      string
	Name         string
	Type         string // "number" or "text"
	Hidden       bool
	DisplayOrder int
	DefaultValue string
}

type Message struct {
	ID        string
	SessionID string
	Author    Author
	Content   string
	CreatedAt time.Time
}

type MessageInput struct {
	SessionID string
	Author    Author
	Content   string
}

// RetrievalResult pairs a canon entity with its similarity to the query
// vector, in [0,1], higher meaning more relevant. Ephemeral: produced per
// turn and never persisted.
type RetrievalResult struct {
	Entity     Entity
	Similarity float64
}
