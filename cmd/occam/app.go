package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexboden/occam-claw/src/anthropic"
	"github.com/alexboden/occam-claw/src/chat"
	"github.com/alexboden/occam-claw/src/config"
	"github.com/alexboden/occam-claw/src/occam"
	"github.com/alexboden/occam-claw/src/occamagent"
	"github.com/alexboden/occam-claw/src/storage"
)

// app holds the wired-up components shared by the serve and prompt commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *storage.Store
	orch   *occam.Orchestrator
}

func buildApp(ctx context.Context, cli *CLI) (*app, error) {
	logger := newLogger(cli.LogLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	tools, err := occamagent.BuildToolbox(ctx, cfg, loc, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	backend := anthropic.NewClient(anthropic.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	})

	llm := &chat.Client{
		Backend:       backend,
		SystemPrompt:  occamagent.SystemPrompt(loc),
		MaxTokens:     cfg.LLM.MaxTokens,
		MaxToolRounds: cfg.LLM.MaxToolRounds,
		Logger:        logger,
	}

	orch := occam.New(store, llm, tools, occam.Options{
		Owner:      cfg.Owner,
		MaxHistory: cfg.Store.MaxHistory,
		Timezone:   loc,
		Logger:     logger,
	})

	return &app{cfg: cfg, logger: logger, store: store, orch: orch}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("closing store", "error", err)
	}
}
