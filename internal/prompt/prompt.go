package prompt

import (
	"fmt"
	"strings"

	"storyloom/internal/store"
)

// Build concatenates the full generation prompt in its fixed order: world
// setting, canon categories, field schema, player, conversation, the
// guideline block, and finally the literal player action. Canon context
// always precedes the guidelines, and the guidelines always precede the
// action. Empty sections are dropped without leaving a header behind.
//
// There is no length budgeting here; if the assembled context outgrows the
// model's window, the upstream API decides what happens.
func Build(
	world *store.World,
	canon map[store.Category][]store.Entity,
	fields []store.PlayerField,
	player *store.Player,
	messages []store.Message,
	action string,
) string {
	sections := []string{RenderWorld(world)}
	for _, category := range store.Categories() {
		sections = append(sections, RenderCategory(category, canon[category]))
	}
	sections = append(sections,
		RenderFieldSchema(fields),
		RenderPlayer(player),
		RenderConversation(messages),
		guidelines,
		fmt.Sprintf("Player Action: %q", action),
		closing,
	)

	var kept []string
	for _, s := range sections {
		if s != "" {
			kept = append(kept, strings.TrimRight(s, "\n"))
		}
	}
	return strings.Join(kept, "\n\n")
}

const guidelines = `=== DM GUIDELINES ===
- Acknowledge the player's action with logical consequences
- Provide immersive, vivid descriptions
- Avoid describing player emotions (only environmental effects)
- Use objective narration without meta-commentary
- Refer to unknown entities descriptively, not by name
- Proactively advance the story to decision points`

const closing = `Generate the DM response based on the world context and player action.`
