package prompt

import (
	"fmt"
	"sort"
	"strings"

	"storyloom/internal/store"
)

var categoryHeaders = map[store.Category]string{
	store.CategoryItems:         "=== ITEMS ===",
	store.CategoryLocations:     "=== LOCATIONS ===",
	store.CategoryAbilities:     "=== ABILITIES ===",
	store.CategoryOrganizations: "=== ORGANIZATIONS ===",
	store.CategoryTaxonomies:    "=== TAXONOMIES ===",
	store.CategoryRules:         "=== RULES ===",
	store.CategoryNPCs:          "=== NPCs ===",
}

// RenderWorld renders the world-setting block that opens every prompt.
func RenderWorld(w *store.World) string {
	var sb strings.Builder
	sb.WriteString("=== WORLD SETTING ===\n")
	fmt.Fprintf(&sb, "Name: %s\n", w.Name)
	if w.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", w.Tone)
	}
	if w.Setting != "" {
		fmt.Fprintf(&sb, "Setting: %s\n", w.Setting)
	}
	if w.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", w.Description)
	}
	return sb.String()
}

// RenderCategory renders one category's entities as a labeled block. An
// empty category renders as the empty string so it is omitted from the
// prompt entirely rather than contributing a bare header.
func RenderCategory(category store.Category, entities []store.Entity) string {
	if len(entities) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(categoryHeaders[category])
	sb.WriteString("\n")
	for _, e := range entities {
		sb.WriteString(renderEntity(category, e))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderEntity(category store.Category, e store.Entity) string {
	var sb strings.Builder
	sb.WriteString("- ")
	if category == store.CategoryRules && e.IsPriority {
		sb.WriteString("[HIGH PRIORITY] ")
	}
	sb.WriteString(e.Name)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(&sb, " (also known as: %s)", strings.Join(e.Aliases, ", "))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Description)
	if category == store.CategoryItems && e.IsUnique {
		sb.WriteString(" [UNIQUE ITEM]")
	}
	if category == store.CategoryNPCs {
		if e.Personality != "" {
			fmt.Fprintf(&sb, " Personality: %s.", strings.TrimSuffix(e.Personality, "."))
		}
		if e.Motivations != "" {
			fmt.Fprintf(&sb, " Motivations: %s.", strings.TrimSuffix(e.Motivations, "."))
		}
	}
	return sb.String()
}

// RenderFieldSchema renders the world's tracked-field definitions in display
// order so the model knows which attributes exist and which are hidden.
func RenderFieldSchema(fields []store.PlayerField) string {
	if len(fields) == 0 {
		return ""
	}

	ordered := make([]store.PlayerField, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	var sb strings.Builder
	sb.WriteString("=== PLAYER FIELDS ===\n")
	for _, f := range ordered {
		fmt.Fprintf(&sb, "- %s (%s", f.Name, f.Type)
		if f.DefaultValue != "" {
			fmt.Fprintf(&sb, ", default: %s", f.DefaultValue)
		}
		sb.WriteString(")")
		if f.Hidden {
			sb.WriteString(" [HIDDEN FROM PLAYER]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderPlayer renders the character block. Every current dynamic field is
// shown, including leftovers that no longer match a field definition: this
// is informational display, not the validated write path.
func RenderPlayer(p *store.Player) string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== PLAYER ===\n")
	fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	if p.Appearance != "" {
		fmt.Fprintf(&sb, "Appearance: %s\n", p.Appearance)
	}
	if p.State != "" {
		fmt.Fprintf(&sb, "State: %s\n", p.State)
	}
	if len(p.DynamicFields) > 0 {
		keys := make([]string, 0, len(p.DynamicFields))
		for k := range p.DynamicFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("Tracked fields:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %v\n", k, p.DynamicFields[k])
		}
	}
	return sb.String()
}

// RenderConversation renders recent messages as chronological dialogue
// lines. The input arrives newest-first from the store and is reversed
// here; callers must not pre-reverse.
func RenderConversation(messages []store.Message) string {
	if len(messages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== CONVERSATION ===\n")
	for i := len(messages) - 1; i >= 0; i-- {
		sb.WriteString(DialogueLine(messages[i]))
		sb.WriteString("\n")
	}
	return sb.String()
}

// DialogueLine renders one message as an author-labeled line.
func DialogueLine(m store.Message) string {
	label := "Player"
	if m.Author == store.AuthorDM {
		label = "DM"
	}
	return fmt.Sprintf("%s: %s", label, m.Content)
}
