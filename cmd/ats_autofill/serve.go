package main

import (
	"context"
	"fmt"

	"github.com/jonathan/ats-autofill/internal/config"
	"github.com/jonathan/ats-autofill/internal/logging"
	"github.com/jonathan/ats-autofill/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort       int
	serveConfigPath string
	serveSQLitePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes resume parsing and candidate autofill endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveSQLitePath, "sqlite", "", "Use a local SQLite file instead of PostgreSQL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if serveSQLitePath != "" {
		cfg.SQLitePath = serveSQLitePath
		cfg.DatabaseURL = ""
	}

	logger, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	filler, err := newAutofiller(cfg, logger)
	if err != nil {
		return err
	}

	auth, err := config.NewAuthConfig()
	if err != nil {
		return err
	}
	if auth == nil {
		logger.Warn("AUTH_JWT_SECRET not set, candidate routes are unauthenticated")
	}

	store, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Store:      store,
		Autofiller: filler,
		Auth:       auth,
		Logger:     logger,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("resume webhook configured", zap.String("policy", string(filler.Policy())))
	return srv.Start()
}
