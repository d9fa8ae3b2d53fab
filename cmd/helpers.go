package cmd

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/config"
	"github.com/ziadkadry99/green-analyzer/internal/db"
	"github.com/ziadkadry99/green-analyzer/internal/geocode"
	"github.com/ziadkadry99/green-analyzer/internal/llm"
	"github.com/ziadkadry99/green-analyzer/internal/orchestrator"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/session"
	"github.com/ziadkadry99/green-analyzer/internal/storage"
	"github.com/ziadkadry99/green-analyzer/internal/usage"
	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `green-analyzer init` to create a config file", err)
	}
	return cfg, nil
}

// stores holds the persistence layer shared by every command.
type stores struct {
	db       *db.DB
	kv       storage.Store
	projects *projects.Store
	usage    *usage.Store
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	kv := storage.NewSQLiteStore(database)
	s := &stores{
		db:       database,
		kv:       kv,
		projects: projects.NewStore(kv, logger),
		usage:    usage.NewStore(database),
	}
	if err := s.projects.Load(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	return s, nil
}

func (s *stores) Close() error {
	return s.db.Close()
}

// createQuerierFromConfig builds the rate-limited, budgeted analysis client.
func createQuerierFromConfig(cfg *config.Config, rec analyst.Recorder) (*analyst.Client, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating analysis provider: %w", err)
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return analyst.NewClient(provider,
		analyst.Models{Flash: cfg.Model, Pro: cfg.ProModel},
		logger,
		analyst.WithRecorder(rec),
		analyst.WithBudget(cfg.MaxCostUSD),
	), nil
}

// newController wires the controller over s. Extra orchestrator options
// are applied after the configured concurrency.
func newController(cfg *config.Config, s *stores, orchOpts ...orchestrator.Option) (*wizard.Controller, error) {
	client, err := createQuerierFromConfig(cfg, s.usage)
	if err != nil {
		return nil, err
	}
	opts := append([]orchestrator.Option{orchestrator.WithConcurrency(cfg.MaxConcurrency)}, orchOpts...)
	orch := orchestrator.New(client, logger, opts...)

	return wizard.New(orch, session.NewManager(s.kv, logger), s.projects, logger,
		wizard.WithLocator(geocode.NewLocator(client, logger)),
		wizard.WithAutosaveOptions(session.WithDelay(cfg.Autosave.Delay())),
	), nil
}
