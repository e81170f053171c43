package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Narrate submits the assembled prompt with the DM persona instruction and
// returns the model's narrative text. An empty or filtered completion is an
// error: the caller treats a missing narrative as fatal to the turn.
func (c *Client) Narrate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx,
		c.chatModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr[float32](c.temperature),
			MaxOutputTokens:   c.maxOutputTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("generating narrative: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generating narrative: empty completion")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
