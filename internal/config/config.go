// =============================================================================
// Analyst Reporting Suite - Configuration Module
// =============================================================================
//
// This module loads and validates the run configuration.
//
// LOAD ORDER (later sources win):
//   1. Built-in defaults
//   2. config.yaml (or the path given with --config)
//   3. Environment variables prefixed with REPORTER_ (e.g. REPORTER_OUT_DIR)
//   4. Command-line overrides (--input, --out, --currency)
//
// Every configuration problem is reported before any input file is read.
//
// CUSTOMIZATION:
//   - Add new options to MainConfig with yaml, envconfig and validate tags
//   - Add their defaults to applyMainConfigDefaults
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "REPORTER"

// DefaultConfigFile is the config path used when --config is not given.
// A missing file at this path is not an error.
const DefaultConfigFile = "config.yaml"

// ErrInvalidAliases is returned when the aliases key is not a mapping of
// strings to strings.
var ErrInvalidAliases = errors.New("aliases must be a mapping of column name to canonical field")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the run configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned recursively for .csv, .xlsx and .xls extracts.
	// Default: "data/in"
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`

	// OutDir receives every artifact of the run.
	// Default: "out"
	OutDir string `yaml:"out_dir" envconfig:"OUT_DIR" validate:"required"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// CurrencyCode is a display label only; no conversion happens.
	// Default: "AUD"
	CurrencyCode string `yaml:"currency_code" envconfig:"CURRENCY_CODE" validate:"required,alpha,len=3"`

	// ReportTitle and ReportSubtitle head the executive summary sheet.
	ReportTitle    string `yaml:"report_title" envconfig:"REPORT_TITLE" validate:"required"`
	ReportSubtitle string `yaml:"report_subtitle" envconfig:"REPORT_SUBTITLE"`

	// Notes are free-text lines shown on the executive summary sheet.
	// Accepts a single string or a list of strings.
	Notes Notes `yaml:"notes" ignored:"true"`

	// Aliases maps raw column names to canonical fields. Empty means the
	// built-in alias table.
	//
	// CUSTOMIZATION: Add your extract's column names here.
	// Example:
	//   aliases:
	//     "Invoice Total": revenue
	//     "Booked On": date
	Aliases Aliases `yaml:"aliases" envconfig:"ALIASES"`

	// =========================================================================
	// OUTPUT TOGGLES
	// =========================================================================

	WriteExcelPack     Toggle `yaml:"write_excel_pack" envconfig:"WRITE_EXCEL_PACK"`
	WriteCleanedCSV    Toggle `yaml:"write_cleaned_csv" envconfig:"WRITE_CLEANED_CSV"`
	WriteQualityReport Toggle `yaml:"write_quality_report" envconfig:"WRITE_QUALITY_REPORT"`
	WriteRunLog        Toggle `yaml:"write_run_log" envconfig:"WRITE_RUN_LOG"`
	WriteParquet       Toggle `yaml:"write_parquet" envconfig:"WRITE_PARQUET"`
	WriteMetrics       Toggle `yaml:"write_metrics" envconfig:"WRITE_METRICS"`

	// =========================================================================
	// CLEANING SETTINGS
	// =========================================================================

	// SerialDateMin and SerialDateMax bound the inclusive window of numbers
	// reinterpreted as spreadsheet serial dates.
	// Default: 20000 and 60000
	SerialDateMin float64 `yaml:"serial_date_min" envconfig:"SERIAL_DATE_MIN" validate:"gte=0"`
	SerialDateMax float64 `yaml:"serial_date_max" envconfig:"SERIAL_DATE_MAX" validate:"gtefield=SerialDateMin"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files read concurrently.
	// Set to 1 for sequential reads.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1,max=64"`

	// ContinueOnError skips unreadable files instead of failing the run.
	// Default: true
	ContinueOnError Toggle `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// LogFormat selects the slog handler: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
}

// Overrides are command-line values that replace configured ones when set.
type Overrides struct {
	InputDir     string
	OutDir       string
	CurrencyCode string
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the configuration file, applies environment
// overrides and validates the result.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file is tolerated
//     only when configPath is DefaultConfigFile.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or if any value is
//     invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && configPath == DefaultConfigFile:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyOverrides replaces configured values with non-empty command-line
// values and re-validates.
func (c *MainConfig) ApplyOverrides(o Overrides) error {
	if o.InputDir != "" {
		c.InputDir = o.InputDir
	}
	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}
	if o.CurrencyCode != "" {
		c.CurrencyCode = o.CurrencyCode
	}
	normalize(c)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyMainConfigDefaults sets default values for every option.
func applyMainConfigDefaults(config *MainConfig) {
	config.InputDir = "data/in"
	config.OutDir = "out"
	config.CurrencyCode = "AUD"
	config.ReportTitle = "Analyst Reporting Pack"
	config.ReportSubtitle = "Automated KPI pack from monthly sales dumps"

	config.WriteExcelPack = true
	config.WriteCleanedCSV = true
	config.WriteQualityReport = true
	config.WriteRunLog = true
	config.WriteParquet = false
	config.WriteMetrics = true

	config.SerialDateMin = 20000
	config.SerialDateMax = 60000

	config.MaxConcurrency = 4
	config.ContinueOnError = true

	config.LogLevel = "info"
	config.LogFormat = "text"
}

// normalize tidies values that are accepted loosely.
func normalize(config *MainConfig) {
	config.CurrencyCode = strings.ToUpper(strings.TrimSpace(config.CurrencyCode))
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	config.InputDir = strings.TrimSpace(config.InputDir)
	config.OutDir = strings.TrimSpace(config.OutDir)
}

// validate is shared; validator.Validate is safe for concurrent use.
var validate = validator.New()

// Validate checks every struct tag rule.
func (c *MainConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// AliasTable returns the alias mapping as a plain map.
func (c *MainConfig) AliasTable() map[string]string {
	return map[string]string(c.Aliases)
}
