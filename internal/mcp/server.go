package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"storyloom/internal/store"
	"storyloom/internal/turn"
)

// Embedder turns query text into a vector for canon search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Matcher runs a scored single-category canon search.
type Matcher interface {
	Match(ctx context.Context, worldID string, category store.Category, query []float32) ([]store.RetrievalResult, error)
}

// TurnRunner executes one full player turn.
type TurnRunner interface {
	Run(ctx context.Context, req turn.Request) (*turn.Result, error)
}

// Server exposes the game over MCP so agent clients can search canon,
// inspect the player sheet, and play turns through the same pipeline the
// HTTP API uses.
type Server struct {
	db       store.Store
	embedder Embedder
	matcher  Matcher
	pipeline TurnRunner
	log      *zap.Logger
	mcp      *sdk.Server
}

func NewServer(db store.Store, embedder Embedder, matcher Matcher, pipeline TurnRunner, log *zap.Logger, version string) *Server {
	s := &Server{
		db:       db,
		embedder: embedder,
		matcher:  matcher,
		pipeline: pipeline,
		log:      log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "storyloom",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
