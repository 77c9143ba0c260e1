// Package cli wires configuration, logging, sink, and fetcher into the
// ratefeed command.
package cli

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/me/ratefeed/internal/config"
	"github.com/me/ratefeed/internal/logging"
	"github.com/me/ratefeed/internal/metrics"
)

// NewRootCmd creates the ratefeed root command. It takes no arguments: one
// invocation performs one export (yesterday's rates overwritten, today's
// appended).
func NewRootCmd() *cobra.Command {
	var (
		flagLogLevel  string
		flagLogFormat string
		flagDebug     bool
	)

	root := &cobra.Command{
		Use:          "ratefeed",
		Short:        "ratefeed exports daily exchange rates as per-currency CSV lines",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; the environment may be set directly.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if flagLogLevel != "" {
				cfg.Log.Level = flagLogLevel
			}
			if flagLogFormat != "" {
				cfg.Log.Format = flagLogFormat
			}
			if flagDebug {
				cfg.Log.Level = "debug"
			}

			logger := logging.New(cfg.Log.Level, cfg.Log.Format)
			if cfg.Metrics.Addr != "" {
				metrics.Serve(cfg.Metrics.Addr, logger)
			}

			return runExport(cmd.Context(), cfg, logger, time.Now)
		},
	}

	root.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	root.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json); overrides config")
	root.Flags().BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level=debug")

	return root
}
