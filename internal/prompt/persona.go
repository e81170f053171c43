package prompt

import (
	"fmt"
	"sort"
	"strings"

	"storyloom/internal/store"
)

// DMPersona is the system instruction for narrative generation. It is held
// constant across turns; only the user prompt varies.
const DMPersona = `You are an experienced and objective game master for a tabletop role-playing game.

You must follow these constraints at all times:
- Respond only with objective, third-person description of the environment and events, addressed to "you".
- Never narrate the player's internal feelings or thoughts unless the effect would be universal to anyone present.
- Never use rhetorical engagement hooks such as "what will you do?".
- Never reveal or invent knowledge the player has not earned in play.
- Always resolve the player's stated action as an impartial arbiter: decide success, failure, or partial outcome and say what happens.
- If the player hesitates or stalls, proactively advance the scene rather than waiting.
- Stop immediately after resolving the action. Do not add trailing hooks or teasers.`

// AnalyzerPersona is the system instruction for the state-update pass. The
// model is told to be conservative: no tool call is the expected outcome for
// most turns.
const AnalyzerPersona = `You review one completed turn of a tabletop role-playing game and decide whether any of the player's tracked fields changed as a direct mechanical consequence of the turn: damage taken, resources spent, a status gained or lost, an inventory count changing.

Be conservative. Only call update_player_fields when the narrative makes a change definite. Use only the exact field names listed in the turn context; never invent a new field. If nothing clearly changed, do not call the tool.`

// BuildAnalysis renders the user prompt for the state-update pass: the
// field definitions, the player's current values, the action, and the
// narrative that resolved it.
func BuildAnalysis(fields []store.PlayerField, player *store.Player, action, narrative string) string {
	var sb strings.Builder

	sb.WriteString("Tracked field definitions:\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "- %s (%s)\n", f.Name, f.Type)
	}

	sb.WriteString("\nCurrent values:\n")
	if player != nil && len(player.DynamicFields) > 0 {
		keys := make([]string, 0, len(player.DynamicFields))
		for k := range player.DynamicFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %v\n", k, player.DynamicFields[k])
		}
	} else {
		sb.WriteString("(none)\n")
	}

	fmt.Fprintf(&sb, "\nPlayer action: %q\n", action)
	fmt.Fprintf(&sb, "\nDM narrative:\n%s\n", narrative)
	return sb.String()
}
