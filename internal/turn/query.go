package turn

import (
	"strings"

	"storyloom/internal/prompt"
	"storyloom/internal/store"
)

// recentMessageLimit is how many prior messages a turn fetches. Only the
// contextWindow oldest of that fetch feed the embedding query; the full
// fetch feeds the conversation block.
const (
	recentMessageLimit = 5
	contextWindow      = 3
)

// BuildEmbedQuery builds the retrieval-embedding input from the current
// player message and short-range conversational context. Messages arrive
// newest-first; the query keeps the tail three of that descending fetch
// (three to five messages back from the current action, not the most recent
// three), reversed to chronological, each as an author-labeled line, with
// the current message last. Retrieval quality depends on reproducing this
// window exactly.
func BuildEmbedQuery(messages []store.Message, current string) string {
	tail := messages
	if len(tail) > contextWindow {
		tail = tail[len(tail)-contextWindow:]
	}

	lines := make([]string, 0, len(tail)+1)
	for i := len(tail) - 1; i >= 0; i-- {
		lines = append(lines, prompt.DialogueLine(tail[i]))
	}
	lines = append(lines, "Player: "+current)
	return strings.Join(lines, "\n")
}
