// =============================================================================
// P&L Workbook Generator - Batch Command
// =============================================================================
//
// This file defines the 'batch' command. The extract is loaded once and the
// BU_ONLY, BU_SG and FULL workbooks are rendered concurrently. A failed
// level does not stop the others; a summary log is written to the output
// directory.
//
// COMMAND USAGE:
//   pnl batch [flags]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pnl-workbook/internal/converter"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
	"github.com/ginjaninja78/pnl-workbook/pkg/utils"
)

var batchFlags generateFlags

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate the workbooks of every detail level",
	Long: `The batch command reads one extract and writes the BU_ONLY, BU_SG and
FULL workbooks in parallel, each with its default common-size setting.

On completion a batch_summary_*.txt file is written to the output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, batchFlags)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	bindSelectorFlags(batchCmd, &batchFlags)
	batchCmd.Flags().StringVar(&batchFlags.csvFile, "csv-file", "", "Path to the fact extract (default: newest matching extract in --data-dir)")
}

func runBatch(cmd *cobra.Command, f generateFlags) error {
	startTime := time.Now()

	// The level is a required selector; batch renders all of them.
	f.detailLevel = string(types.DetailBUOnly)
	opts, err := buildOptions(cmd, f)
	if err != nil {
		return err
	}

	conv := converter.New(cfg, converter.WithLogger(logger))
	results, err := conv.Batch(cmd.Context(), opts, converter.AllDetailLevels)
	if err != nil {
		return err
	}

	summary := utils.BatchSummary{
		StartTime: startTime,
		EndTime:   time.Now(),
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		summary.RunID = r.RunID
		summary.Source = r.Source
		summary.Records = r.Stats.Records
		summary.Warnings = r.Warnings
		if r.Success {
			summary.Generated = append(summary.Generated, utils.GeneratedFile{
				Detail:      r.Detail,
				OutputFile:  r.OutputFile,
				Columns:     r.Stats.Workbook.Columns,
				ValueCells:  r.Stats.Workbook.ValueCells,
				ProcessTime: r.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s\n", r.Detail, filepath.Base(r.OutputFile))
		} else {
			summary.Failed = append(summary.Failed, utils.FailedGeneration{
				Detail:       r.Detail,
				ErrorMessage: r.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", r.Detail, r.Error)
		}
	}

	fmt.Fprintln(out, "\n=== Batch Complete ===")
	fmt.Fprintf(out, "Successful:      %d\n", len(summary.Generated))
	fmt.Fprintf(out, "Errors:          %d\n", len(summary.Failed))
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		return err
	}
	logger.Info("batch summary written", "path", path)

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d workbooks failed", len(summary.Failed), len(results))
	}
	return nil
}
