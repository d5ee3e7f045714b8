// =============================================================================
// P&L Workbook Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (generate, batch, serve, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pnl)
//   ├── generateCmd (pnl generate)
//   ├── batchCmd    (pnl batch)
//   ├── serveCmd    (pnl serve)
//   └── versionCmd  (pnl version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration (YAML file + PNL_ environment overrides)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pnl-workbook/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty uses config.yaml
// when it exists and the built-in defaults otherwise.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg and logger are initialised before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pnl",
	Short: "P&L Workbook Generator - Render P&L fact extracts as formatted Excel workbooks",
	Long: `pnl turns the monthly P&L fact extract (TRN_PL_*.csv) into a formatted
Excel workbook: every mapped line item aggregated per business unit, service
group and product, with formula rows and optional common-size percentages.

Example Usage:
  pnl generate --report-type COSTTYPE --period MTH --detail-level BU_ONLY
  pnl generate --csv-file data/TRN_PL_GLGROUP_NT_YTD_TABLE_20240630.csv --period YTD --report-type GLGROUP --detail-level FULL
  pnl batch --report-type COSTTYPE --period MTH --month 202406
  pnl serve --config ./config.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, verbose)
		slog.SetDefault(logger)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is config.yaml when present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// newLogger builds the process logger.
//
// PARAMETERS:
//   - w: Destination of log records.
//   - level: debug, info, warn or error.
//   - format: text or json.
//   - debug: Forces the debug level.
func newLogger(w io.Writer, level, format string, debug bool) *slog.Logger {
	var lvl slog.Level
	if debug {
		lvl = slog.LevelDebug
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
