package turn

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storyloom/internal/llm"
	"storyloom/internal/prompt"
	"storyloom/internal/store"
)

// ModelClient is the slice of the hosted model API the pipeline consumes.
type ModelClient interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Narrate(ctx context.Context, system, prompt string) (string, error)
	ProposeFieldUpdates(ctx context.Context, system, prompt string) ([]llm.ProposedUpdate, error)
}

var _ ModelClient = (*llm.Client)(nil)

// Retriever selects canon context for a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, worldID string, query []float32) map[store.Category][]store.Entity
}

type Request struct {
	SessionID     string
	PlayerMessage string
}

type Result struct {
	// Response is the DM narrative. Always present on success, even when
	// persisting it failed.
	Response string
	// MessageID identifies the stored DM message; nil when persistence
	// failed and the narrative exists only in this response.
	MessageID *string
	// AppliedFields is the merged dynamic-fields map the analyzer produced,
	// nil when no update was proposed or everything proposed was invalid.
	AppliedFields map[string]any
}

// Pipeline runs one player turn end to end: validate, embed, retrieve,
// assemble, generate, persist, analyze. Control flows strictly forward.
// Failures before a narrative exists abort the turn; failures after it are
// logged and absorbed so the player still gets their story beat.
type Pipeline struct {
	store     store.Store
	model     ModelClient
	retriever Retriever
	log       *zap.Logger
}

func NewPipeline(st store.Store, model ModelClient, retriever Retriever, log *zap.Logger) *Pipeline {
	return &Pipeline{store: st, model: model, retriever: retriever, log: log}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.PlayerMessage) == "" {
		return nil, fmt.Errorf("%w: playerMessage is required", ErrInvalidRequest)
	}

	session, err := p.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, req.SessionID)
	}

	world, err := p.store.GetWorld(ctx, session.WorldID)
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	if world == nil {
		return nil, fmt.Errorf("loading world: world %s missing for session %s", session.WorldID, session.ID)
	}

	player, err := p.store.GetPlayer(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("loading player: %w", err)
	}

	fields, err := p.store.ListPlayerFields(ctx, world.ID)
	if err != nil {
		return nil, fmt.Errorf("loading player fields: %w", err)
	}

	recent, err := p.store.RecentMessages(ctx, session.ID, recentMessageLimit)
	if err != nil {
		// A lost history degrades context; it does not cost the player
		// their turn.
		p.log.Warn("recent messages unavailable", zap.String("session_id", session.ID), zap.Error(err))
		recent = nil
	}

	queryVector, err := p.model.EmbedQuery(ctx, BuildEmbedQuery(recent, req.PlayerMessage))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	canon := p.retriever.Retrieve(ctx, world.ID, queryVector)

	generationPrompt := prompt.Build(world, canon, fields, player, recent, req.PlayerMessage)

	narrative, err := p.model.Narrate(ctx, prompt.DMPersona, generationPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	result := &Result{Response: narrative}

	id, err := p.store.InsertMessage(ctx, store.MessageInput{
		SessionID: session.ID,
		Author:    store.AuthorDM,
		Content:   narrative,
	})
	if err != nil {
		// Accepted inconsistency: the player sees a response that history
		// will not contain.
		p.log.Warn("persisting dm message failed", zap.String("session_id", session.ID), zap.Error(err))
	} else {
		result.MessageID = &id
	}

	result.AppliedFields = p.analyze(ctx, fields, player, req.PlayerMessage, narrative)
	return result, nil
}

// analyze runs the conservative state-update pass. Nothing in here may fail
// the turn; every error path logs and returns what was decided so far.
func (p *Pipeline) analyze(ctx context.Context, fields []store.PlayerField, player *store.Player, action, narrative string) map[string]any {
	if player == nil {
		return nil
	}

	proposed, err := p.model.ProposeFieldUpdates(ctx, prompt.AnalyzerPersona, prompt.BuildAnalysis(fields, player, action, narrative))
	if err != nil {
		p.log.Warn("field analysis failed", zap.String("player_id", player.ID), zap.Error(err))
		return nil
	}
	if len(proposed) == 0 {
		return nil
	}

	valid, dropped := ValidateUpdates(proposed, fields)
	for _, update := range dropped {
		p.log.Warn("dropping update for unknown field",
			zap.String("player_id", player.ID),
			zap.String("field", update.FieldName))
	}
	if len(valid) == 0 {
		return nil
	}

	merged := ApplyUpdates(player.DynamicFields, valid)
	if err := p.store.UpdatePlayerFields(ctx, player.ID, merged); err != nil {
		p.log.Warn("persisting field updates failed", zap.String("player_id", player.ID), zap.Error(err))
	}
	return merged
}
