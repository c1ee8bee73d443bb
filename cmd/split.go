// =============================================================================
// Analyst Reporting Suite - Split Command
// =============================================================================
//
// COMMAND USAGE:
//   reporter split --input superstore.csv [--out data/in]
//
// Splits a flat sales export into monthly dumps with raw ERP-style headers,
// alternating .xlsx (even months) and .csv (odd months).
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/analyst-reporting/internal/demo"
	"github.com/ginjaninja78/analyst-reporting/internal/logging"
)

var (
	splitInput string
	splitOut   string
)

// splitCmd represents the 'split' command.
var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a flat sales export into monthly dumps",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(logging.Options{Verbose: verbose})

		files, err := demo.Split(splitInput, splitOut, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintf(out, "  ✓ wrote %s\n", f)
		}
		fmt.Fprintf(out, "Wrote %d monthly dump(s) to %s\n", len(files), splitOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVar(&splitInput, "input", "", "Path to the flat sales export (CSV)")
	splitCmd.Flags().StringVar(&splitOut, "out", "data/in", "Output folder for monthly dumps")
	splitCmd.MarkFlagRequired("input")
}
