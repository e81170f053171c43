package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/llm"
	"storyloom/internal/retrieval"
	"storyloom/internal/store"
	"storyloom/internal/store/postgres"
	"storyloom/internal/store/sqlite"
	"storyloom/internal/turn"
)

const configFile = "storyloom.yaml"

// app bundles the wired runtime every long-running command needs: config,
// logger, store, model client, retriever, and the turn pipeline.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       store.Store
	model    *llm.Client
	retr     *retrieval.Retriever
	pipeline *turn.Pipeline
}

func newApp(ctx context.Context) (*app, error) {
	// Missing .env is fine; secrets may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		log.Sync()
		return nil, err
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		db.Close(ctx)
		log.Sync()
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	model, err := llm.New(ctx, apiKey, cfg.Model)
	if err != nil {
		db.Close(ctx)
		log.Sync()
		return nil, err
	}

	retr := retrieval.New(db, cfg, log)
	pipeline := turn.NewPipeline(db, model, retr, log)

	return &app{cfg: cfg, log: log, db: db, model: model, retr: retr, pipeline: pipeline}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		a.log.Warn("closing store", zap.Error(err))
	}
	a.log.Sync()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if strings.HasPrefix(cfg.Database, "sqlite://") {
		return sqlite.New(ctx, cfg.Database)
	}
	return postgres.New(ctx, cfg.Database)
}
