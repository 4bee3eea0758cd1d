package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ProblemRadar/internal/app"
	"ProblemRadar/internal/config"
	"ProblemRadar/internal/logging"
)

var (
	logLevel string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "problemradar",
	Short:         "Aggregate SaaS pain points and turn them into validated product ideas",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger = logging.New(cfg.Logging.Level)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the scheduled refresh pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Aggregate, store, index and notify once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		report, err := application.Refresh(cmd.Context())
		if printErr := printJSON(cmd, report); printErr != nil {
			return printErr
		}
		return err
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured problem sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()
		return printJSON(cmd, application.Sources())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, refreshCmd, sourcesCmd)
}

func serve(ctx context.Context) error {
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()
	return application.Run(ctx)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("problemradar stopped", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
