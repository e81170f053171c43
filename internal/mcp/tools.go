package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"storyloom/internal/store"
	"storyloom/internal/turn"
)

type SearchCanonInput struct {
	WorldID  string `json:"world_id" jsonschema:"world to search"`
	Query    string `json:"query" jsonschema:"natural-language search terms"`
	Category string `json:"category,omitempty" jsonschema:"restrict to one canon category"`
}

type DMTurnInput struct {
	SessionID     string `json:"session_id" jsonschema:"active session"`
	PlayerMessage string `json:"player_message" jsonschema:"the player's action or dialogue"`
}

type GetPlayerInput struct {
	SessionID string `json:"session_id" jsonschema:"active session"`
}

type CanonMatchOutput struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Description string   `json:"description"`
	Similarity  float64  `json:"similarity"`
}

type SearchCanonOutput struct {
	Results []CanonMatchOutput `json:"results"`
}

type DMTurnOutput struct {
	Response      string         `json:"response"`
	MessageID     *string        `json:"message_id"`
	AppliedFields map[string]any `json:"applied_fields,omitempty"`
}

type PlayerOutput struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Appearance    string         `json:"appearance"`
	State         string         `json:"state"`
	DynamicFields map[string]any `json:"dynamic_fields"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_canon",
		Description: "Semantic search over a world's canon entities",
	}, s.handleSearchCanon)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "dm_turn",
		Description: "Play one turn: send a player action and get the DM narrative",
	}, s.handleDMTurn)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_player",
		Description: "Retrieve the player sheet for a session",
	}, s.handleGetPlayer)
}

func (s *Server) handleSearchCanon(ctx context.Context, req *sdk.CallToolRequest, input SearchCanonInput) (*sdk.CallToolResult, SearchCanonOutput, error) {
	if input.WorldID == "" {
		return nil, SearchCanonOutput{}, fmt.Errorf("world_id is required")
	}
	if input.Query == "" {
		return nil, SearchCanonOutput{}, fmt.Errorf("query is required")
	}
	categories, err := searchCategories(input.Category)
	if err != nil {
		return nil, SearchCanonOutput{}, err
	}

	vector, err := s.embedder.EmbedQuery(ctx, input.Query)
	if err != nil {
		return nil, SearchCanonOutput{}, fmt.Errorf("embedding query: %w", err)
	}

	output := []CanonMatchOutput{}
	for _, category := range categories {
		results, err := s.matcher.Match(ctx, input.WorldID, category, vector)
		if err != nil {
			return nil, SearchCanonOutput{}, err
		}
		for _, result := range results {
			output = append(output, canonMatchOutput(result))
		}
	}
	return nil, SearchCanonOutput{Results: output}, nil
}

func (s *Server) handleDMTurn(ctx context.Context, req *sdk.CallToolRequest, input DMTurnInput) (*sdk.CallToolResult, DMTurnOutput, error) {
	result, err := s.pipeline.Run(ctx, turn.Request{
		SessionID:     input.SessionID,
		PlayerMessage: input.PlayerMessage,
	})
	if err != nil {
		return nil, DMTurnOutput{}, s.turnError(input.SessionID, err)
	}
	return nil, DMTurnOutput{
		Response:      result.Response,
		MessageID:     result.MessageID,
		AppliedFields: result.AppliedFields,
	}, nil
}

func (s *Server) handleGetPlayer(ctx context.Context, req *sdk.CallToolRequest, input GetPlayerInput) (*sdk.CallToolResult, PlayerOutput, error) {
	if input.SessionID == "" {
		return nil, PlayerOutput{}, fmt.Errorf("session_id is required")
	}
	player, err := s.db.GetPlayer(ctx, input.SessionID)
	if err != nil {
		return nil, PlayerOutput{}, err
	}
	if player == nil {
		return nil, PlayerOutput{}, fmt.Errorf("no player for session %s", input.SessionID)
	}

	fields := map[string]any{}
	for key, value := range player.DynamicFields {
		fields[key] = value
	}
	return nil, PlayerOutput{
		ID:            player.ID,
		Name:          player.Name,
		Appearance:    player.Appearance,
		State:         player.State,
		DynamicFields: fields,
	}, nil
}

// turnError maps pipeline failures onto client-safe messages, mirroring
// the HTTP layer: upstream model errors are logged here and never reach
// the MCP client.
func (s *Server) turnError(sessionID string, err error) error {
	switch {
	case errors.Is(err, turn.ErrInvalidRequest):
		return fmt.Errorf("session_id and player_message are required")
	case errors.Is(err, turn.ErrSessionNotFound):
		return fmt.Errorf("session not found")
	default:
		s.log.Error("turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("internal error")
	}
}

// searchCategories resolves an optional category filter to the list of
// canon tables to search. Empty means all of them.
func searchCategories(filter string) ([]store.Category, error) {
	if filter == "" {
		return store.Categories(), nil
	}
	for _, category := range store.Categories() {
		if string(category) == filter {
			return []store.Category{category}, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q", filter)
}

func canonMatchOutput(result store.RetrievalResult) CanonMatchOutput {
	return CanonMatchOutput{
		ID:          result.Entity.ID,
		Category:    string(result.Entity.Category),
		Name:        result.Entity.Name,
		Aliases:     append([]string{}, result.Entity.Aliases...),
		Description: result.Entity.Description,
		Similarity:  result.Similarity,
	}
}
