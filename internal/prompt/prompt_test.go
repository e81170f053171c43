package prompt

import (
	"strings"
	"testing"

	"storyloom/internal/store"
)

func TestBuild_SectionOrder(t *testing.T) {
	world := &store.World{Name: "Emberfall", Tone: "grim"}
	canon := map[store.Category][]store.Entity{
		store.CategoryItems:     {{Name: "Torch", Description: "Burns for an hour"}},
		store.CategoryLocations: {{Name: "The Sunken Gate", Description: "A flooded ruin"}},
		store.CategoryRules:     {{Name: "Fall Damage", Description: "1d6 per 10 feet"}},
		store.CategoryNPCs:      {{Name: "Grim", Description: "A gate guard"}},
	}
	fields := []store.PlayerField{{Name: "HP", Type: "number"}}
	player := &store.Player{Name: "Arin"}
	messages := []store.Message{{Author: store.AuthorDM, Content: "You arrive at the gate."}}

	got := Build(world, canon, fields, player, messages, "I climb the gate")

	markers := []string{
		"=== WORLD SETTING ===",
		"=== ITEMS ===",
		"=== LOCATIONS ===",
		"=== RULES ===",
		"=== NPCs ===",
		"=== PLAYER FIELDS ===",
		"=== PLAYER ===",
		"=== CONVERSATION ===",
		"=== DM GUIDELINES ===",
		`Player Action: "I climb the gate"`,
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(got, marker)
		if idx < 0 {
			t.Fatalf("prompt missing %q:\n%s", marker, got)
		}
		if idx < last {
			t.Fatalf("%q out of order:\n%s", marker, got)
		}
		last = idx
	}
}

func TestBuild_EmptyWorld(t *testing.T) {
	world := &store.World{Name: "Blankscape"}
	player := &store.Player{Name: "Arin"}

	got := Build(world, map[store.Category][]store.Entity{}, nil, player, nil, "I look around")

	if !strings.Contains(got, "=== WORLD SETTING ===") {
		t.Errorf("world section missing")
	}
	for _, header := range []string{"=== ITEMS ===", "=== LOCATIONS ===", "=== ABILITIES ===", "=== ORGANIZATIONS ===", "=== TAXONOMIES ===", "=== RULES ===", "=== NPCs ===", "=== PLAYER FIELDS ===", "=== CONVERSATION ==="} {
		if strings.Contains(got, header) {
			t.Errorf("empty section %q rendered a header", header)
		}
	}
	if !strings.Contains(got, `Player Action: "I look around"`) {
		t.Errorf("action missing: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank section left a gap:\n%q", got)
	}
}
