package main

import (
	"context"
	"fmt"

	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/config"
	"github.com/jonathan/ats-autofill/internal/db"
	"github.com/jonathan/ats-autofill/internal/localstore"
	"github.com/jonathan/ats-autofill/internal/resumeparse"
	"github.com/jonathan/ats-autofill/internal/server"
	"github.com/jonathan/ats-autofill/internal/webhook"
	"go.uber.org/zap"
)

// loadSettings reads the optional config file, applies environment
// overrides and fills defaults.
func loadSettings(configPath string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// openStore opens the SQLite store when a path is configured, otherwise PostgreSQL.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (server.CandidateStore, error) {
	if cfg.SQLitePath != "" {
		store, err := localstore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
		return store, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --sqlite is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	logger.Info("using postgres store")
	return database, nil
}

func newNormalizer(cfg config.Config, logger *zap.Logger) (*resumeparse.Normalizer, error) {
	normalizer, err := resumeparse.NewNormalizer(cfg.NormalizerOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}
	return normalizer, nil
}

// newAutofiller wires the webhook client and normalizer from cfg.
func newAutofiller(cfg config.Config, logger *zap.Logger) (*autofill.Autofiller, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required (set RESUME_WEBHOOK_URL, webhook_url in config, or --webhook)")
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	client, err := webhook.NewClient(cfg.WebhookURL, &webhook.Options{Timeout: timeout, Logger: logger})
	if err != nil {
		return nil, err
	}
	normalizer, err := newNormalizer(cfg, logger)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.ListPolicy()
	if err != nil {
		return nil, err
	}
	return autofill.New(client, normalizer, policy, logger), nil
}
