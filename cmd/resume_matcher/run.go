package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/app"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var runAgentMode string

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the agent once and exit",
	Long:  `Execute one pipeline run synchronously. The mode comes from --agent, falling back to the AGENT environment variable.`,
	RunE:  runOnce,
}

func init() {
	runCommand.Flags().StringVarP(&runAgentMode, "agent", "a", "", "Pipeline to run: index, matching or both (defaults to AGENT)")
	rootCmd.AddCommand(runCommand)
}

func runOnce(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runAgentMode != "" {
		cfg.Agent = runAgentMode
	}

	mode, err := pipeline.ParseMode(cfg.Agent)
	if err != nil {
		return err
	}

	log, err := logger.New(jsonLog, debugLog)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Interrupts stop the run at its next iteration boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, log)
	defer application.Close(context.Background())

	runner := pipeline.NewRunner(application.Deps)
	return runner.RunSync(ctx, mode)
}
