// =============================================================================
// P&L Workbook Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the P&L Workbook Generator CLI. It hands
// control to the Cobra commands in the cmd package.
//
// USAGE:
//   pnl generate   - Render one workbook from a fact extract
//   pnl batch      - Render every detail level of one extract
//   pnl serve      - Serve the workbook viewer API
//   pnl version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Fact model, mapping tables, aggregation, workbook I/O, viewer
//   - pkg/       : File naming and discovery utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/pnl-workbook/cmd"
)

func main() {
	cmd.Execute()
}
