package retrieval

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/store"
)

type mockStore struct {
	matches map[store.Category][]store.RetrievalResult
	all     map[store.Category][]store.Entity
	failing map[store.Category]bool

	matchCalls []matchCall
}

type matchCall struct {
	worldID   string
	category  store.Category
	limit     int
	threshold float64
}

func (m *mockStore) Close(ctx context.Context) error        { return nil }
func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockStore) GetWorld(ctx context.Context, worldID string) (*store.World, error) {
	return nil, nil
}

func (m *mockStore) GetSession(ctx context.Context, sessionID string) (*store.Session, error) {
	return nil, nil
}

func (m *mockStore) GetPlayer(ctx context.Context, sessionID string) (*store.Player, error) {
	return nil, nil
}

func (m *mockStore) UpdatePlayerFields(ctx context.Context, playerID string, fields map[string]any) error {
	return nil
}

func (m *mockStore) ListPlayerFields(ctx context.Context, worldID string) ([]store.PlayerField, error) {
	return nil, nil
}

func (m *mockStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]store.Message, error) {
	return nil, nil
}

func (m *mockStore) InsertMessage(ctx context.Context, msg store.MessageInput) (string, error) {
	return "", nil
}

func (m *mockStore) MatchEntities(ctx context.Context, worldID string, category store.Category, query []float32, limit int, threshold float64) ([]store.RetrievalResult, error) {
	m.matchCalls = append(m.matchCalls, matchCall{worldID, category, limit, threshold})
	if m.failing[category] {
		return nil, fmt.Errorf("simulated %s query failure", category)
	}
	return m.matches[category], nil
}

func (m *mockStore) ListEntities(ctx context.Context, worldID string, category store.Category) ([]store.Entity, error) {
	if m.failing[category] {
		return nil, fmt.Errorf("simulated %s query failure", category)
	}
	return m.all[category], nil
}

func (m *mockStore) UpdateEntityEmbedding(ctx context.Context, category store.Category, entityID string, embedding []float32) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Project:  "test",
		Version:  1,
		Database: "postgres://localhost/test",
	}
}

func TestRetrieve_UsesConfiguredTunables(t *testing.T) {
	st := &mockStore{}
	r := New(st, testConfig(t), zap.NewNop())

	r.Retrieve(context.Background(), "w1", []float32{0.1})

	if len(st.matchCalls) != 7 {
		t.Fatalf("got %d category queries, want 7", len(st.matchCalls))
	}
	for _, call := range st.matchCalls {
		if call.worldID != "w1" {
			t.Errorf("%s queried world %q", call.category, call.worldID)
		}
		wantK := 5
		if call.category == store.CategoryRules {
			wantK = 10
		}
		if call.limit != wantK {
			t.Errorf("%s limit = %d, want %d", call.category, call.limit, wantK)
		}
		if call.threshold != 0.65 {
			t.Errorf("%s threshold = %v, want 0.65", call.category, call.threshold)
		}
	}
}

func TestRetrieve_PartialFailureDegrades(t *testing.T) {
	st := &mockStore{
		matches: map[store.Category][]store.RetrievalResult{
			store.CategoryItems: {{Entity: store.Entity{Name: "Torch"}, Similarity: 0.9}},
			store.CategoryNPCs:  {{Entity: store.Entity{Name: "Grim"}, Similarity: 0.8}},
		},
		failing: map[store.Category]bool{store.CategoryNPCs: false, store.CategoryLocations: true},
	}
	r := New(st, testConfig(t), zap.NewNop())

	got := r.Retrieve(context.Background(), "w1", []float32{0.1})

	if len(got[store.CategoryLocations]) != 0 {
		t.Errorf("failing category should degrade to empty, got %v", got[store.CategoryLocations])
	}
	if len(got[store.CategoryItems]) != 1 || got[store.CategoryItems][0].Name != "Torch" {
		t.Errorf("healthy category lost its results: %v", got[store.CategoryItems])
	}
	if len(got[store.CategoryNPCs]) != 1 {
		t.Errorf("healthy category lost its results: %v", got[store.CategoryNPCs])
	}
}

func TestRetrieve_Idempotent(t *testing.T) {
	st := &mockStore{
		matches: map[store.Category][]store.RetrievalResult{
			store.CategoryRules: {
				{Entity: store.Entity{Name: "Cover"}, Similarity: 0.9},
				{Entity: store.Entity{Name: "Stealth"}, Similarity: 0.7},
			},
		},
	}
	r := New(st, testConfig(t), zap.NewNop())

	query := []float32{0.3, 0.2}
	first := r.Retrieve(context.Background(), "w1", query)
	second := r.Retrieve(context.Background(), "w1", query)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same query and data produced different results:\n%v\nvs\n%v", first, second)
	}
}

func TestRetrieve_AllModeFallsBackToFullList(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retrieval = map[string]config.Retrieval{
		"items": {Mode: config.ModeAll},
	}
	st := &mockStore{
		all: map[store.Category][]store.Entity{
			store.CategoryItems: {{Name: "Torch"}, {Name: "Rope"}, {Name: "Lantern"}},
		},
	}
	r := New(st, cfg, zap.NewNop())

	got := r.Retrieve(context.Background(), "w1", []float32{0.1})

	if len(got[store.CategoryItems]) != 3 {
		t.Errorf("all mode returned %d items, want every entity (3)", len(got[store.CategoryItems]))
	}
	for _, call := range st.matchCalls {
		if call.category == store.CategoryItems {
			t.Errorf("all mode should not run a similarity query")
		}
	}
}

func TestRetrieve_RandomModeSamplesK(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retrieval = map[string]config.Retrieval{
		"npcs": {Mode: config.ModeRandom, TopK: 2},
	}
	st := &mockStore{
		all: map[store.Category][]store.Entity{
			store.CategoryNPCs: {{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
		},
	}
	r := New(st, cfg, zap.NewNop())

	got := r.Retrieve(context.Background(), "w1", []float32{0.1})

	if len(got[store.CategoryNPCs]) != 2 {
		t.Errorf("random mode returned %d npcs, want 2", len(got[store.CategoryNPCs]))
	}
}

func TestMatch_SingleCategory(t *testing.T) {
	st := &mockStore{
		matches: map[store.Category][]store.RetrievalResult{
			store.CategoryAbilities: {{Entity: store.Entity{Name: "Blood Gun"}, Similarity: 0.92}},
		},
	}
	r := New(st, testConfig(t), zap.NewNop())

	got, err := r.Match(context.Background(), "w1", store.CategoryAbilities, []float32{0.1})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(got) != 1 || got[0].Similarity != 0.92 {
		t.Errorf("match results = %v", got)
	}
}
