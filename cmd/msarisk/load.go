package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/config"
	"github.com/gyeh/msarisk/internal/db"
	"github.com/gyeh/msarisk/internal/engine"
	"github.com/gyeh/msarisk/internal/exitcode"
	"github.com/gyeh/msarisk/internal/logging"
	"github.com/gyeh/msarisk/internal/narrative"
	"github.com/gyeh/msarisk/internal/store"
)

// newSource opens the configured record source. The returned func releases
// any connection it holds.
func newSource(ctx context.Context) (store.Source, func(), error) {
	if cfg.Source == config.SourcePostgres {
		pool, err := db.NewPool(ctx, cfg.DSN, false)
		if err != nil {
			return nil, nil, err
		}
		return db.NewSource(pool), pool.Close, nil
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = store.DefaultWorkers
	}
	return &store.FileSource{Root: cfg.DataDir, Dirs: cfg.DatasetDirs, Workers: workers}, func() {}, nil
}

// newNarrative returns nil when no API key is configured.
func newNarrative(log zerolog.Logger) *narrative.Service {
	if cfg.LLMAPIKey == "" {
		log.Info().Msg("LLM_API_KEY not set, narrative analysis disabled")
		return nil
	}
	client := narrative.NewChatClient(narrative.ClientConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	return narrative.NewService(client, cfg.LLMTimeout, logging.Component(log, "narrative"))
}

// mustLoadEngine validates the config, opens the source and loads an engine,
// exiting with the matching code on failure.
func mustLoadEngine(ctx context.Context, log zerolog.Logger, narr *narrative.Service) (*engine.Engine, func()) {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	src, closeSrc, err := newSource(ctx)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}

	eng := engine.New(src, narr, logging.Component(log, "engine"))
	if _, err := eng.Load(ctx); err != nil {
		closeSrc()
		log.Error().Err(err).Msg("data load failed")
		os.Exit(exitcode.LoadError)
	}
	return eng, closeSrc
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
