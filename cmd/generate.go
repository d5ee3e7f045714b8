// =============================================================================
// P&L Workbook Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which renders one P&L workbook
// from a fact extract.
//
// COMMAND USAGE:
//   pnl generate [flags]
//
// FLAGS:
//   --csv-file         : Explicit extract (else discovered by report type and period)
//   --data-dir         : Directory searched for extracts
//   --output           : Workbook path
//   --output-dir       : Directory of conventionally named workbooks
//   --report-type      : COSTTYPE or GLGROUP
//   --period           : MTH or YTD
//   --detail-level     : BU_ONLY, BU_SG or BU_SG_PRODUCT
//   --month            : YYYYMM filter
//   --common-size      : Force the common-size percentage columns on
//   --no-common-size   : Force them off
//   --encoding         : Encoding tried first
//
// PROCESSING PIPELINE:
//   1. Validate the selectors
//   2. Locate and decode the extract
//   3. Normalize facts and split the satellite source
//   4. Build columns, rows and aggregates
//   5. Write the workbook
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pnl-workbook/internal/converter"
	"github.com/ginjaninja78/pnl-workbook/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// generateFlags holds the selectors shared by generate and batch.
type generateFlags struct {
	csvFile      string
	dataDir      string
	output       string
	outputDir    string
	reportType   string
	period       string
	detailLevel  string
	month        string
	commonSize   bool
	noCommonSize bool
	encoding     string
}

var genFlags generateFlags

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one P&L workbook",
	Long: `The generate command reads a P&L fact extract and writes one Excel
workbook at the chosen detail level.

When --csv-file is omitted the newest TRN_PL_{REPORT}_NT_{PERIOD}_TABLE_*.csv
in the data directory is used, restricted to --month when given. When
--output is omitted the workbook is named P&L_{REPORT}_{PERIOD}_{YYYYMM}_{LEVEL}.xlsx
in the output directory.

Common-size percentage columns default to on for BU_ONLY and off otherwise.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, genFlags)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	bindSelectorFlags(generateCmd, &genFlags)
	generateCmd.Flags().StringVar(&genFlags.csvFile, "csv-file", "", "Path to the fact extract (default: newest matching extract in --data-dir)")
	generateCmd.Flags().StringVar(&genFlags.output, "output", "", "Path of the workbook to write")
	generateCmd.Flags().StringVar(&genFlags.detailLevel, "detail-level", "BU_ONLY", "Column structure: BU_ONLY, BU_SG or BU_SG_PRODUCT")
	generateCmd.Flags().BoolVar(&genFlags.commonSize, "common-size", false, "Add common-size percentage columns")
	generateCmd.Flags().BoolVar(&genFlags.noCommonSize, "no-common-size", false, "Omit common-size percentage columns")
	generateCmd.MarkFlagsMutuallyExclusive("common-size", "no-common-size")
}

// bindSelectorFlags registers the flags generate and batch share.
func bindSelectorFlags(c *cobra.Command, f *generateFlags) {
	c.Flags().StringVar(&f.dataDir, "data-dir", "data", "Directory searched for extracts")
	c.Flags().StringVar(&f.outputDir, "output-dir", "", "Directory of generated workbooks (default from config)")
	c.Flags().StringVar(&f.reportType, "report-type", "COSTTYPE", "Template variant: COSTTYPE or GLGROUP")
	c.Flags().StringVar(&f.period, "period", "MTH", "Period variant: MTH or YTD")
	c.Flags().StringVar(&f.month, "month", "", "Restrict to one month (YYYYMM)")
	c.Flags().StringVar(&f.encoding, "encoding", "", "Encoding tried first (tis-620, cp874, utf-8-sig, utf-8)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runGenerate validates the flags and runs one generation.
func runGenerate(cmd *cobra.Command, f generateFlags) error {
	opts, err := buildOptions(cmd, f)
	if err != nil {
		return err
	}

	conv := converter.New(cfg, converter.WithLogger(logger))
	result := conv.Run(cmd.Context(), opts)
	if !result.Success {
		return result.Error
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(result.Source), result.OutputFile)
	fmt.Fprintf(out, "Records:         %d\n", result.Stats.Records)
	fmt.Fprintf(out, "Columns:         %d\n", result.Stats.Workbook.Columns)
	fmt.Fprintf(out, "Warnings:        %d\n", len(result.Warnings))
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)
	return nil
}

// buildOptions validates the selectors and applies directory overrides to
// the loaded configuration.
func buildOptions(cmd *cobra.Command, f generateFlags) (converter.Options, error) {
	sel, err := validation.New().Select(validation.GenerateOptions{
		ReportType:  f.reportType,
		Period:      f.period,
		DetailLevel: f.detailLevel,
		Month:       f.month,
		Encoding:    f.encoding,
	})
	if err != nil {
		return converter.Options{}, err
	}

	if f.outputDir != "" && f.output != "" {
		return converter.Options{}, errors.New("--output and --output-dir cannot be combined")
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}

	opts := converter.Options{
		CSVFile:   f.csvFile,
		Output:    f.output,
		Selection: sel,
	}
	switch {
	case f.commonSize:
		on := true
		opts.CommonSize = &on
	case f.noCommonSize:
		off := false
		opts.CommonSize = &off
	}
	return opts, nil
}
