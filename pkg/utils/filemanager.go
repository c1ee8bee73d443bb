// =============================================================================
// Analyst Reporting Suite - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for a reporting run:
//   - Input discovery (recursive, deterministic order)
//   - Output directory management and artifact naming
//   - Run identity
//   - Run log generation
//
// OUTPUT LAYOUT (all under the output directory):
//   report_pack.xlsx      KPI workbook
//   data_quality.xlsx     data-quality workbook
//   cleaned_data.csv      cleaned fact table
//   cleaned_data.parquet  cleaned fact table (optional)
//   run_log.txt           human-readable run summary
//   metrics.prom          per-step metrics in Prometheus text format
//
// Input files are never moved or modified.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact file names.
const (
	ReportPackFile     = "report_pack.xlsx"
	QualityReportFile  = "data_quality.xlsx"
	CleanedCSVFile     = "cleaned_data.csv"
	CleanedParquetFile = "cleaned_data.parquet"
	RunLogFile         = "run_log.txt"
	MetricsFile        = "metrics.prom"
)

// InputExtensions are the extract formats picked up from the input directory.
var InputExtensions = []string{".csv", ".xlsx", ".xls"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a run.
type FileManager struct {
	// InputDir is scanned for extracts.
	InputDir string

	// OutputDir receives every artifact.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	return ensureDir(fm.OutputDir)
}

// EnsureInputDirectory creates the input directory if it doesn't exist.
// Used when generating demo inputs.
func (fm *FileManager) EnsureInputDirectory() error {
	return ensureDir(fm.InputDir)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// OutputPath returns the path of an artifact in the output directory.
func (fm *FileManager) OutputPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory recursively.
//
// PARAMETERS:
//   - extensions: File extensions to match, case-insensitive (e.g. ".csv").
//     No extensions matches every file.
//
// RETURNS:
//   - File paths sorted lexicographically. A missing input directory yields
//     an empty list.
//   - An error if the directory cannot be walked.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(fm.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matchesExtension(path, extensions) {
			files = append(files, path)
		}
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func matchesExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// =============================================================================
// RUN IDENTITY
// =============================================================================

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// RUN LOG GENERATION
// =============================================================================

// SkippedFile is an input that could not be read.
type SkippedFile struct {
	InputFile    string
	ErrorMessage string
}

// RunSummary contains summary information about a run.
type RunSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	InputDir     string
	OutputDir    string
	Currency     string
	FilesRead    []string
	FilesSkipped []SkippedFile
	RowsLoaded   int
	Artifacts    []string
	Warnings     []string
}

// FormatRunLog renders the run log text.
func FormatRunLog(summary RunSummary) string {
	var b strings.Builder

	fmt.Fprintln(&b, "Analyst Reporting Suite - Run Log")
	fmt.Fprintf(&b, "Generated: %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n", summary.RunID)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Input dir: %s\n", summary.InputDir)
	fmt.Fprintf(&b, "Output dir: %s\n", summary.OutputDir)
	fmt.Fprintf(&b, "Currency: %s\n", summary.Currency)
	fmt.Fprintf(&b, "Files read: %d\n", len(summary.FilesRead))
	for _, f := range summary.FilesRead {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	if len(summary.FilesSkipped) > 0 {
		fmt.Fprintf(&b, "Files skipped: %d\n", len(summary.FilesSkipped))
		for _, sf := range summary.FilesSkipped {
			fmt.Fprintf(&b, "  %s: %s\n", sf.InputFile, sf.ErrorMessage)
		}
	}
	fmt.Fprintf(&b, "Rows loaded: %d\n", summary.RowsLoaded)
	fmt.Fprintf(&b, "Duration: %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))
	fmt.Fprintln(&b, "Artifacts:")
	if len(summary.Artifacts) == 0 {
		fmt.Fprintln(&b, "  (none)")
	}
	for _, a := range summary.Artifacts {
		fmt.Fprintf(&b, "  %s\n", a)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Warnings:")
	if len(summary.Warnings) == 0 {
		b.WriteString("- (none)")
	}
	for i, w := range summary.Warnings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + w)
	}
	b.WriteString("\n")

	return b.String()
}

// WriteRunLog writes the run log to path.
//
// PARAMETERS:
//   - summary: The run summary.
//   - path: The destination file, usually OutputPath(RunLogFile).
//
// RETURNS:
//   - An error if writing fails.
func WriteRunLog(summary RunSummary, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create run log directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatRunLog(summary)); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush run log: %w", err)
	}

	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
