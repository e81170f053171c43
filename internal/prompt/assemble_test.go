package prompt

import (
	"strings"
	"testing"
	"time"

	"storyloom/internal/store"
)

func TestRenderCategory_Empty(t *testing.T) {
	if got := RenderCategory(store.CategoryItems, nil); got != "" {
		t.Errorf("empty category rendered %q, want empty string", got)
	}
}

func TestRenderCategory_ItemFlags(t *testing.T) {
	got := RenderCategory(store.CategoryItems, []store.Entity{
		{Name: "Healing Potion", Aliases: []string{"Red Potion", "Restorative"}, Description: "Restores 50 HP"},
		{Name: "Sunblade", Description: "A blade of pure light", IsUnique: true},
	})

	if !strings.HasPrefix(got, "=== ITEMS ===\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "- Healing Potion (also known as: Red Potion, Restorative): Restores 50 HP") {
		t.Errorf("alias rendering wrong: %q", got)
	}
	if !strings.Contains(got, "- Sunblade: A blade of pure light [UNIQUE ITEM]") {
		t.Errorf("unique tag missing: %q", got)
	}
}

func TestRenderCategory_RulePriority(t *testing.T) {
	got := RenderCategory(store.CategoryRules, []store.Entity{
		{Name: "Death and Dying", Description: "At 0 HP the character falls", IsPriority: true},
		{Name: "Cover", Description: "Partial cover grants +2 AC"},
	})

	if !strings.Contains(got, "- [HIGH PRIORITY] Death and Dying:") {
		t.Errorf("priority tag missing: %q", got)
	}
	if strings.Contains(got, "[HIGH PRIORITY] Cover") {
		t.Errorf("non-priority rule tagged: %q", got)
	}
}

func TestRenderCategory_NPCDetails(t *testing.T) {
	got := RenderCategory(store.CategoryNPCs, []store.Entity{
		{Name: "Grim", Description: "A surly gate guard", Personality: "gruff and suspicious", Motivations: "protect his post"},
		{Name: "Mila", Description: "A wandering bard"},
	})

	if !strings.Contains(got, "- Grim: A surly gate guard Personality: gruff and suspicious. Motivations: protect his post.") {
		t.Errorf("npc details wrong: %q", got)
	}
	if strings.Contains(got, "Mila: A wandering bard Personality") {
		t.Errorf("absent npc details rendered: %q", got)
	}
}

func TestRenderFieldSchema(t *testing.T) {
	got := RenderFieldSchema([]store.PlayerField{
		{Name: "Corruption", Type: "number", Hidden: true, DisplayOrder: 2},
		{Name: "HP", Type: "number", DefaultValue: "10", DisplayOrder: 0},
		{Name: "Title", Type: "text", DisplayOrder: 1},
	})

	if !strings.Contains(got, "- HP (number, default: 10)") {
		t.Errorf("HP line wrong: %q", got)
	}
	if !strings.Contains(got, "- Corruption (number) [HIDDEN FROM PLAYER]") {
		t.Errorf("hidden tag missing: %q", got)
	}
	hp := strings.Index(got, "- HP")
	title := strings.Index(got, "- Title")
	corruption := strings.Index(got, "- Corruption")
	if !(hp < title && title < corruption) {
		t.Errorf("fields not in display order: %q", got)
	}
}

func TestRenderPlayer_ShowsAllDynamicFields(t *testing.T) {
	p := &store.Player{
		Name:       "Arin",
		Appearance: "Tall, scarred",
		State:      "Winded from the climb",
		DynamicFields: map[string]any{
			"HP":         float64(10),
			"LegacyLuck": "high", // no matching definition; still shown
		},
	}

	got := RenderPlayer(p)
	if !strings.Contains(got, "Name: Arin") || !strings.Contains(got, "State: Winded from the climb") {
		t.Errorf("player block wrong: %q", got)
	}
	if !strings.Contains(got, "- HP: 10") {
		t.Errorf("HP missing: %q", got)
	}
	if !strings.Contains(got, "- LegacyLuck: high") {
		t.Errorf("unlisted dynamic field filtered out of display: %q", got)
	}
}

func TestRenderPlayer_Deterministic(t *testing.T) {
	p := &store.Player{
		Name:          "Arin",
		DynamicFields: map[string]any{"Mana": 4, "HP": 10, "Gold": 25},
	}

	first := RenderPlayer(p)
	for i := 0; i < 20; i++ {
		if got := RenderPlayer(p); got != first {
			t.Fatalf("player rendering not deterministic:\n%q\nvs\n%q", first, got)
		}
	}
}

func TestRenderConversation_ReversesToChronological(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Newest-first, as fetched from the store.
	messages := []store.Message{
		{Author: store.AuthorDM, Content: "third", CreatedAt: base.Add(2 * time.Minute)},
		{Author: store.AuthorPlayer, Content: "second", CreatedAt: base.Add(time.Minute)},
		{Author: store.AuthorPlayer, Content: "first", CreatedAt: base},
	}

	got := RenderConversation(messages)
	want := "=== CONVERSATION ===\nPlayer: first\nPlayer: second\nDM: third\n"
	if got != want {
		t.Errorf("conversation = %q, want %q", got, want)
	}
}
