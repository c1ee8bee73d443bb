// =============================================================================
// Analyst Reporting Suite - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   reporter validate
//
// Loads the configuration exactly as 'run' would, builds the alias table
// and reports problems without reading any input. Prints the effective
// settings on success.
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/analyst-reporting/internal/cleaning"
	"github.com/ginjaninja78/analyst-reporting/internal/config"
	"github.com/ginjaninja78/analyst-reporting/internal/ingest"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without processing",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := loadConfig(config.Overrides{})
		if err != nil {
			return err
		}

		cleaner, err := cleaning.New(cfg.AliasTable(), cleaning.CoerceOptions{
			SerialMin: cfg.SerialDateMin,
			SerialMax: cfg.SerialDateMax,
		})
		if err != nil {
			return usageError(err)
		}

		files, err := ingest.Discover(cfg.InputDir)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "=== Configuration OK ===")
		fmt.Fprintf(out, "Input dir:   %s (%d file(s))\n", cfg.InputDir, len(files))
		fmt.Fprintf(out, "Output dir:  %s\n", cfg.OutDir)
		fmt.Fprintf(out, "Currency:    %s\n", cfg.CurrencyCode)
		fmt.Fprintf(out, "Serial days: %g to %g\n", cfg.SerialDateMin, cfg.SerialDateMax)

		aliases := cleaner.Normalizer().Aliases()
		keys := make([]string, 0, len(aliases))
		for k := range aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(out, "Aliases:     %d\n", len(keys))
		for _, k := range keys {
			fmt.Fprintf(out, "  %s -> %s\n", k, aliases[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
