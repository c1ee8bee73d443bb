// =============================================================================
// Analyst Reporting Suite - Pipeline Module
// =============================================================================
//
// This module runs one reporting pass end to end, from the raw extracts in
// the input directory to the artifacts in the output directory.
//
// PIPELINE:
//   1. Ingest: discover and read every extract, tag rows with source_file
//   2. Clean: normalize headers, coerce types
//   3. Validate: collect data-quality warnings
//   4. Aggregate: build the KPI tables
//   5. Profile: build the data-quality report
//   6. Write artifacts: cleaned data, quality workbook, report pack
//   7. Write the run log and metrics
//
// Steps 1 to 4 always run. Every artifact in steps 5 to 7 has its own
// toggle in the configuration.
//
// A Runner is built once per configuration. Configuration problems (a bad
// alias table, an inverted serial window) surface from New, before any
// file is touched.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/analyst-reporting/internal/cleaning"
	"github.com/ginjaninja78/analyst-reporting/internal/config"
	"github.com/ginjaninja78/analyst-reporting/internal/exporter"
	"github.com/ginjaninja78/analyst-reporting/internal/ingest"
	"github.com/ginjaninja78/analyst-reporting/internal/kpi"
	"github.com/ginjaninja78/analyst-reporting/internal/logging"
	"github.com/ginjaninja78/analyst-reporting/internal/metrics"
	"github.com/ginjaninja78/analyst-reporting/internal/quality"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/ginjaninja78/analyst-reporting/internal/validation"
	"github.com/ginjaninja78/analyst-reporting/internal/xlsxwriter"
	"github.com/ginjaninja78/analyst-reporting/pkg/utils"
)

// Step names, as recorded in metrics.
const (
	StepIngest         = "ingest"
	StepClean          = "clean"
	StepValidate       = "validate"
	StepAggregate      = "aggregate"
	StepProfile        = "profile"
	StepCleanedCSV     = "write_cleaned_csv"
	StepCleanedParquet = "write_parquet"
	StepQualityReport  = "write_quality_report"
	StepReportPack     = "write_report_pack"
	StepRunLog         = "write_run_log"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs, the run log and metrics.
	RunID string

	// Fact is the cleaned fact table.
	Fact *types.FactTable

	// Bundle holds the KPI tables.
	Bundle *kpi.Bundle

	// Warnings are the data-quality warnings, in validation order.
	Warnings []string

	// FilesRead and Skipped describe the inputs.
	FilesRead []string
	Skipped   []ingest.Skipped

	// Artifacts lists the files written, in write order.
	Artifacts []string

	// Stats contains run statistics.
	Stats Stats
}

// Stats contains statistics about a run.
type Stats struct {
	FilesRead    int
	FilesSkipped int
	RowsLoaded   int
	Warnings     int
	Duration     time.Duration
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg     *config.MainConfig
	cleaner *cleaning.Cleaner
	logger  *slog.Logger
}

// New creates a Runner.
//
// PARAMETERS:
//   - cfg: A validated configuration.
//   - logger: Optional; slog.Default() when nil.
//
// RETURNS:
//   - An error if the alias table or serial window is unusable.
func New(cfg *config.MainConfig, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaner, err := cleaning.New(cfg.AliasTable(), cleaning.CoerceOptions{
		SerialMin: cfg.SerialDateMin,
		SerialMax: cfg.SerialDateMax,
	})
	if err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg, cleaner: cleaner, logger: logger}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline once.
//
// RETURNS:
//   - The run result. On failure the result holds whatever was produced
//     before the failing step.
//   - ingest.ErrNoInputFiles (wrapped) when there is nothing to read, or the
//     first error of a failing step.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: utils.NewRunID()}
	logger := logging.WithRunID(r.logger, result.RunID)

	rec, err := metrics.NewRecorder()
	if err != nil {
		return result, err
	}

	fm := utils.NewFileManager(r.cfg.InputDir, r.cfg.OutDir)

	// =========================================================================
	// STEP 1: INGEST
	// =========================================================================
	// Every .csv/.xlsx/.xls under the input directory, in sorted order.

	var raw *types.Table
	err = rec.Step(StepIngest, func() error {
		files, err := fm.DiscoverInputFiles(utils.InputExtensions...)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("%w in %s", ingest.ErrNoInputFiles, r.cfg.InputDir)
		}

		loaded, err := ingest.Load(ctx, files, ingest.Options{
			MaxConcurrency:  r.cfg.MaxConcurrency,
			ContinueOnError: r.cfg.ContinueOnError.Enabled(),
			Logger:          logger,
		})
		if loaded != nil {
			result.FilesRead = loaded.FilesRead
			result.Skipped = loaded.Skipped
		}
		if err != nil {
			return err
		}

		raw = loaded.Table
		return nil
	})
	if err != nil {
		return result, err
	}

	result.Stats.FilesRead = len(result.FilesRead)
	result.Stats.FilesSkipped = len(result.Skipped)
	result.Stats.RowsLoaded = raw.RowCount()
	logger.Debug("ingested input files",
		slog.Int("files", result.Stats.FilesRead),
		slog.Int("rows", result.Stats.RowsLoaded),
		slog.Int("columns", len(raw.Columns)))

	// =========================================================================
	// STEP 2: CLEAN
	// =========================================================================

	_ = rec.Step(StepClean, func() error {
		result.Fact = r.cleaner.Clean(raw)
		return nil
	})
	fact := result.Fact

	rec.RecordRows(metrics.RowsLoaded, fact.Len)
	if fact.Has(types.FieldDate) {
		rec.RecordRows(metrics.RowsNullDates, fact.NullCount(types.FieldDate))
	}
	if fact.Has(types.FieldRevenue) {
		rec.RecordRows(metrics.RowsNullRevenue, fact.NullCount(types.FieldRevenue))
	}
	logger.Debug("cleaned data", slog.Int("rows", fact.Len), slog.Int("columns", len(fact.Columns)))

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================
	// Warnings never stop the run.

	_ = rec.Step(StepValidate, func() error {
		result.Warnings = validation.Validate(fact)
		return nil
	})
	for _, w := range result.Warnings {
		logger.Warn("data quality warning", slog.String("warning", w))
	}
	rec.RecordWarnings(len(result.Warnings))
	result.Stats.Warnings = len(result.Warnings)

	// =========================================================================
	// STEP 4: AGGREGATE
	// =========================================================================

	_ = rec.Step(StepAggregate, func() error {
		result.Bundle = kpi.Build(fact)
		return nil
	})
	logger.Debug("built KPI tables",
		slog.Int("months", len(result.Bundle.Trends)),
		slog.Int("region_groups", len(result.Bundle.DrilldownRegion)),
		slog.Int("product_groups", len(result.Bundle.DrilldownProduct)))

	// =========================================================================
	// STEP 5: PROFILE
	// =========================================================================

	var profile *quality.Report
	if r.cfg.WriteQualityReport.Enabled() {
		_ = rec.Step(StepProfile, func() error {
			profile = quality.Build(fact)
			return nil
		})
	}

	// =========================================================================
	// STEP 6: WRITE ARTIFACTS
	// =========================================================================

	if err := fm.EnsureDirectories(); err != nil {
		return result, err
	}

	writes := []struct {
		enabled bool
		step    string
		file    string
		write   func(path string) error
	}{
		{r.cfg.WriteCleanedCSV.Enabled(), StepCleanedCSV, utils.CleanedCSVFile, func(path string) error {
			return exporter.NewCSVWriter(logger).WriteCleanedCSV(path, fact)
		}},
		{r.cfg.WriteParquet.Enabled(), StepCleanedParquet, utils.CleanedParquetFile, func(path string) error {
			return exporter.WriteParquet(path, fact)
		}},
		{profile != nil, StepQualityReport, utils.QualityReportFile, func(path string) error {
			return xlsxwriter.WriteQualityReport(path, profile)
		}},
		{r.cfg.WriteExcelPack.Enabled(), StepReportPack, utils.ReportPackFile, func(path string) error {
			return xlsxwriter.WriteReportPack(path, result.Bundle, xlsxwriter.PackOptions{
				CurrencyCode: r.cfg.CurrencyCode,
				Title:        r.cfg.ReportTitle,
				Subtitle:     r.cfg.ReportSubtitle,
				Notes:        r.cfg.Notes,
				Warnings:     result.Warnings,
			})
		}},
	}

	for _, w := range writes {
		if !w.enabled {
			continue
		}
		path := fm.OutputPath(w.file)
		if err := rec.Step(w.step, func() error { return w.write(path) }); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", w.file, err)
		}
		logger.Info("wrote artifact", slog.String("path", path))
		result.Artifacts = append(result.Artifacts, path)
	}

	// =========================================================================
	// STEP 7: RUN LOG AND METRICS
	// =========================================================================
	// Metrics go first so the run log can list them; the run log's own
	// write is therefore not in the metrics file.

	if r.cfg.WriteMetrics.Enabled() {
		path := fm.OutputPath(utils.MetricsFile)
		if err := rec.WriteTextfile(path); err != nil {
			return result, err
		}
		logger.Info("wrote artifact", slog.String("path", path))
		result.Artifacts = append(result.Artifacts, path)
	}

	result.Stats.Duration = time.Since(start)

	if r.cfg.WriteRunLog.Enabled() {
		path := fm.OutputPath(utils.RunLogFile)
		if err := utils.WriteRunLog(r.summary(result, start), path); err != nil {
			return result, err
		}
		logger.Info("wrote artifact", slog.String("path", path))
		result.Artifacts = append(result.Artifacts, path)
	}

	return result, nil
}

// summary converts a result into the run log summary.
func (r *Runner) summary(result *Result, start time.Time) utils.RunSummary {
	s := utils.RunSummary{
		RunID:      result.RunID,
		StartTime:  start,
		EndTime:    start.Add(result.Stats.Duration),
		InputDir:   r.cfg.InputDir,
		OutputDir:  r.cfg.OutDir,
		Currency:   r.cfg.CurrencyCode,
		RowsLoaded: result.Stats.RowsLoaded,
		Artifacts:  result.Artifacts,
		Warnings:   result.Warnings,
	}
	for _, f := range result.FilesRead {
		s.FilesRead = append(s.FilesRead, filepath.Base(f))
	}
	for _, sk := range result.Skipped {
		s.FilesSkipped = append(s.FilesSkipped, utils.SkippedFile{
			InputFile:    filepath.Base(sk.Path),
			ErrorMessage: sk.Err.Error(),
		})
	}
	return s
}
