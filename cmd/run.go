// =============================================================================
// Analyst Reporting Suite - Run Command
// =============================================================================
//
// This file defines the 'run' command, the main command of the suite. It
// loads the configuration and executes the reporting pipeline once.
//
// COMMAND USAGE:
//   reporter run [flags]
//
// FLAGS:
//   --input     : Override input_dir from the configuration
//   --out       : Override out_dir from the configuration
//   --currency  : Override currency_code (e.g. AUD, USD)
//   --demo      : Generate demo inputs into the input directory first
//
// PROCESSING PIPELINE:
//   1. Load configuration (file, environment, flags)
//   2. Optionally generate demo inputs
//   3. Run the pipeline (ingest, clean, validate, aggregate, write)
//   4. Print a summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/analyst-reporting/internal/config"
	"github.com/ginjaninja78/analyst-reporting/internal/demo"
	"github.com/ginjaninja78/analyst-reporting/internal/ingest"
	"github.com/ginjaninja78/analyst-reporting/internal/pipeline"
	"github.com/ginjaninja78/analyst-reporting/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputDir string
	outDir   string
	currency string
	withDemo bool
)

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean the input extracts and build the report pack",
	Long: `The run command reads every .csv and .xlsx extract under the input
directory, cleans and validates the combined data, and writes the KPI
report pack together with the optional artifacts enabled in the
configuration (cleaned data, data-quality workbook, run log, metrics).

Unreadable files are skipped with a warning unless continue_on_error is off.
Data-quality problems never stop a run; they are listed as warnings.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&inputDir, "input", "", "Override input_dir from config")
	runCmd.Flags().StringVar(&outDir, "out", "", "Override out_dir from config")
	runCmd.Flags().StringVar(&currency, "currency", "", "Override currency_code from config (e.g. AUD/USD)")
	runCmd.Flags().BoolVar(&withDemo, "demo", false, "Generate demo inputs into the input folder, then run")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReport(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== Analyst Reporting Suite ===")
	fmt.Fprintln(out, "Loading configuration...")

	cfg, err := loadConfig(config.Overrides{
		InputDir:     inputDir,
		OutDir:       outDir,
		CurrencyCode: currency,
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	runner, err := pipeline.New(cfg, logger)
	if err != nil {
		return usageError(err)
	}

	// =========================================================================
	// STEP 2: DEMO INPUTS
	// =========================================================================

	if withDemo {
		files, err := demo.Generate(cfg.InputDir, logger)
		if err != nil {
			return fmt.Errorf("failed to generate demo inputs: %w", err)
		}
		fmt.Fprintf(out, "Generated %d demo file(s) in %s\n", len(files), cfg.InputDir)
	}

	// =========================================================================
	// STEP 3: RUN PIPELINE
	// =========================================================================

	fmt.Fprintf(out, "Processing files in %s...\n", cfg.InputDir)

	result, err := runner.Run(cmd.Context())
	if errors.Is(err, ingest.ErrNoInputFiles) {
		return usageError(err)
	}
	if err != nil {
		return err
	}

	for _, sk := range result.Skipped {
		fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(sk.Path), sk.Err)
	}
	for _, path := range result.Artifacts {
		fmt.Fprintf(out, "  ✓ wrote %s\n", path)
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(out, "Files read:      %d\n", result.Stats.FilesRead)
	fmt.Fprintf(out, "Files skipped:   %d\n", result.Stats.FilesSkipped)
	fmt.Fprintf(out, "Rows loaded:     %d\n", result.Stats.RowsLoaded)
	fmt.Fprintf(out, "Currency:        %s\n", cfg.CurrencyCode)
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.Duration)
	fmt.Fprintln(out, "\nWarnings:")
	fmt.Fprintln(out, validation.FormatWarnings(result.Warnings))

	return nil
}
