package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/app"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent trigger server",
	Long:  `Start an HTTP server exposing health, run-agent and status endpoints. Pipeline runs are triggered over HTTP and execute in the background.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log, err := logger.New(jsonLog, debugLog)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// The process starts even when collaborator credentials are missing so
	// the health endpoint answers; triggered runs fail until they are set.
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("collaborator configuration incomplete",
			zap.String("unset", strings.Join(missing, ", ")),
		)
	}

	mode, err := pipeline.ParseMode(cfg.Agent)
	if err != nil {
		return err
	}

	application := app.New(cfg, log)
	defer application.Close(context.Background())
	runner := pipeline.NewRunner(application.Deps)

	srv := server.New(server.Config{Port: cfg.Port, DefaultMode: mode}, runner, log)
	return srv.Start()
}
