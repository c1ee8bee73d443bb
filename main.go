// =============================================================================
// Analyst Reporting Suite - Main Entry Point
// =============================================================================
//
// USAGE:
//   reporter run        - Clean the input extracts and build the report pack
//   reporter validate   - Validate configuration without processing
//   reporter split      - Split a flat export into monthly dumps
//   reporter version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Pipeline stages and writers (not for external import)
//   - pkg/       : Shared file and run-log utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/analyst-reporting/cmd"
)

func main() {
	cmd.Execute()
}
