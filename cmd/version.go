// =============================================================================
// P&L Workbook Generator - Version Command
// =============================================================================
//
// This file defines the 'version' command. Besides the build information it
// lists the report variants and detail levels this build can render, so an
// operator can check a deployed binary against the extracts they hold.
//
// COMMAND USAGE:
//   pnl version [--short]
//
// OUTPUT:
//   pnl 1.0.0 (built unknown, go1.24.0)
//   Reports:       COSTTYPE, GLGROUP
//   Periods:       MTH, YTD
//   Detail levels: BU_ONLY, BU_SG, BU_SG_PRODUCT (file token FULL)
//   Encodings:     tis-620, cp874, utf-8-sig, utf-8
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pnl-workbook/internal/converter"
	"github.com/ginjaninja78/pnl-workbook/internal/csvparser"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/pnl-workbook/cmd.Version=1.2.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version and the supported report variants",
	// version needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, Version)
			return
		}

		levels := make([]string, 0, len(converter.AllDetailLevels))
		for _, d := range converter.AllDetailLevels {
			levels = append(levels, string(d))
		}

		fmt.Fprintf(out, "pnl %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
		fmt.Fprintf(out, "Reports:       %s, %s\n", types.ReportCostType, types.ReportGLGroup)
		fmt.Fprintf(out, "Periods:       %s, %s\n", types.PeriodMonth, types.PeriodYearToDate)
		fmt.Fprintf(out, "Detail levels: %s (file token %s)\n", strings.Join(levels, ", "), types.DetailBUSGProduct.FileToken())
		fmt.Fprintf(out, "Encodings:     %s\n", strings.Join(csvparser.DefaultEncodings, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}
