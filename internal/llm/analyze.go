package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ProposedUpdate is one field mutation the analysis model asked for. The
// value is whatever JSON scalar the model supplied; validation against the
// world's field definitions happens downstream.
type ProposedUpdate struct {
	FieldName string
	NewValue  any
}

const updateToolName = "update_player_fields"

var updateTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:        updateToolName,
		Description: "Record changes to the player's tracked fields caused by this turn. Only call this when a field definitively changed.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"updates": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"field_name": {
								Type:        genai.TypeString,
								Description: "Exact name of an existing tracked field",
							},
							"new_value": {
								AnyOf: []*genai.Schema{
									{Type: genai.TypeNumber},
									{Type: genai.TypeString},
									{Type: genai.TypeBoolean},
								},
								Description: "The field's new value, typed to match the field",
							},
						},
						Required: []string{"field_name", "new_value"},
					},
				},
			},
			Required: []string{"updates"},
		},
	}},
}

// ProposeFieldUpdates runs the bounded tool-calling pass. A nil slice with a
// nil error means the model chose not to call the tool, which is the common
// case and not an error.
func (c *Client) ProposeFieldUpdates(ctx context.Context, system, prompt string) ([]ProposedUpdate, error) {
	resp, err := c.genai.Models.GenerateContent(ctx,
		c.analysisModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Tools:             []*genai.Tool{updateTool},
			ToolConfig: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAuto,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("analyzing field updates: %w", err)
	}

	for _, call := range resp.FunctionCalls() {
		if call.Name != updateToolName {
			continue
		}
		return decodeUpdates(call.Args)
	}
	return nil, nil
}

func decodeUpdates(args map[string]any) ([]ProposedUpdate, error) {
	raw, ok := args["updates"].([]any)
	if !ok {
		return nil, fmt.Errorf("analyzing field updates: malformed updates argument")
	}

	updates := make([]ProposedUpdate, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("analyzing field updates: malformed update entry")
		}
		name, ok := entry["field_name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("analyzing field updates: update entry missing field_name")
		}
		updates = append(updates, ProposedUpdate{
			FieldName: name,
			NewValue:  entry["new_value"],
		})
	}
	return updates, nil
}
