// =============================================================================
// P&L Workbook Generator - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the workbook viewer
// API over the output directory. SIGINT and SIGTERM shut it down gracefully.
//
// COMMAND USAGE:
//   pnl serve [--addr :8090]
//
// =============================================================================

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pnl-workbook/internal/observability"
	"github.com/ginjaninja78/pnl-workbook/internal/viewer"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbook viewer API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Viewer.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return viewer.NewServer(cfg, observability.NewMetrics(), logger).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}
