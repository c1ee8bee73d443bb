// =============================================================================
// Analyst Reporting Suite - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reporter)
//   ├── runCmd      (reporter run)
//   ├── validateCmd (reporter validate)
//   ├── splitCmd    (reporter split)
//   └── versionCmd  (reporter version)
//
// EXIT CODES:
//   0  success
//   1  any other failure
//   2  configuration error, or no input files
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/analyst-reporting/internal/config"
	"github.com/ginjaninja78/analyst-reporting/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// EXIT ERRORS
// =============================================================================

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries a process exit code with the underlying error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// usageError marks err as a configuration or input problem (exit code 2).
func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reporter",
	Short: "Analyst Reporting Suite - KPI packs from monthly sales dumps",
	Long: `Analyst Reporting Suite turns a folder of messy monthly sales extracts
(CSV and XLSX) into a cleaned dataset and a KPI report pack.

Key Features:
  - Header aliasing and null-tolerant type coercion
  - Spreadsheet serial date recovery
  - Summary, monthly trends, month-over-month variance and drilldowns
  - Data-quality workbook, run log and run metrics

Example Usage:
  reporter run                         # Process every file in the input directory
  reporter run --demo                  # Generate demo inputs, then process them
  reporter run --config ./my.yaml      # Use a custom configuration file
  reporter validate                    # Validate configuration without processing
  reporter split --input superstore.csv --out data/in`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with the matching code on error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration and applies command-line overrides.
// Every failure is a usage error.
func loadConfig(overrides config.Overrides) (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, usageError(fmt.Errorf("failed to load config: %w", err))
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// newLogger builds the run logger from the configuration and --verbose.
func newLogger(cfg *config.MainConfig) *slog.Logger {
	return logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Verbose: verbose,
	})
}
