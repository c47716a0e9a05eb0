package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fangyikun/advertisement-opitimization/internal/authoring"
	"github.com/fangyikun/advertisement-opitimization/internal/config"
	"github.com/fangyikun/advertisement-opitimization/internal/engine"
	"github.com/fangyikun/advertisement-opitimization/internal/envctx"
	"github.com/fangyikun/advertisement-opitimization/internal/scheduler"
	"github.com/fangyikun/advertisement-opitimization/internal/storage"
	"github.com/fangyikun/advertisement-opitimization/internal/vocab"
	"github.com/fangyikun/advertisement-opitimization/internal/weather"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("adscheduler exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocabResolver := vocab.NewResolver(backend)
	resolver := envctx.NewResolver(weather.NewOpenMeteo())
	selector := engine.NewSelector(engine.NewEvaluator(vocabResolver))
	loop := scheduler.NewLoop(backend, backend, vocabResolver, resolver, selector, scheduler.Options{
		TickInterval: cfg.TickInterval,
		StartupDelay: cfg.StartupDelay,
	})

	// The rule service is the mutation boundary the API layer calls;
	// seeding goes through it too so validation and the on-demand
	// trigger behave the same everywhere.
	ruleService := authoring.NewRuleService(backend, vocabResolver, loop.Kick)
	if cfg.SeedFile != "" {
		if err := applySeed(ctx, backend, ruleService, cfg.SeedFile); err != nil {
			return err
		}
	}

	log.Info().
		Dur("tick", cfg.TickInterval).
		Bool("persistent", cfg.DatabasePath != "").
		Msg("Starting signage scheduler")
	return loop.Run(ctx)
}

func openBackend(cfg config.Config) (storage.Backend, error) {
	if cfg.DatabasePath == "" {
		log.Info().Msg("No database configured, running on in-memory storage")
		return storage.NewMemory(), nil
	}
	return storage.OpenSQLite(cfg.DatabasePath)
}

// applySeed loads the seed file into an empty backend. A backend that
// already has stores is left alone.
func applySeed(ctx context.Context, backend storage.Backend, ruleService *authoring.RuleService, path string) error {
	n, err := backend.CountStores(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}
	for _, st := range seed.Stores {
		if err := backend.UpsertStore(ctx, st); err != nil {
			return err
		}
	}
	if err := ruleService.Reset(ctx, seed.Rules); err != nil {
		return err
	}
	log.Info().Int("stores", len(seed.Stores)).Int("rules", len(seed.Rules)).Msg("Seed data applied")
	return nil
}
