package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nvandessel/synthuser/internal/config"
	"github.com/nvandessel/synthuser/internal/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "synthuser",
		Short: "Synthetic users for web interface testing",
		Long: `synthuser simulates how a particular kind of person would move through a
web page: what they notice, how they feel, what they click, and what they
learn from it.

Personas, pages and scenarios are YAML files. Settings come from
~/.synthuser/config.yaml and SYNTHUSER_* environment variables; a .env file
in the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: reading .env: %v\n", err)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRankCmd(),
		newSimulateCmd(),
		newPersonaCmd(),
		newWeightsCmd(),
		newConfigCmd(),
		newTraceCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// app bundles what every command needs once flags are parsed.
type app struct {
	cfg       *config.SimConfig
	log       *slog.Logger
	decisions *logging.DecisionLogger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if !logging.ValidLevel(level) {
			return nil, fmt.Errorf("invalid log level %q (valid: %v)", level, logging.Levels)
		}
		cfg.Logging.Level = level
	}

	dl, err := logging.NewDecisionLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		log:       logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		decisions: dl,
	}, nil
}

func (a *app) Close() {
	if err := a.decisions.Close(); err != nil {
		a.log.Warn("closing decision log", "error", err)
	}
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
