package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_dump.csv"))
	touch(t, filepath.Join(dir, "a_dump.XLSX"))
	touch(t, filepath.Join(dir, "nested", "c_dump.xls"))
	touch(t, filepath.Join(dir, "notes.txt"))

	fm := NewFileManager(dir, t.TempDir())
	files, err := fm.DiscoverInputFiles(InputExtensions...)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a_dump.XLSX"),
		filepath.Join(dir, "b_dump.csv"),
		filepath.Join(dir, "nested", "c_dump.xls"),
	}, files)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), "")
	files, err := fm.DiscoverInputFiles(InputExtensions...)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEnsureDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "nested")
	fm := NewFileManager("", out)

	require.NoError(t, fm.EnsureDirectories())
	assert.True(t, FileExists(out))
	assert.Equal(t, filepath.Join(out, RunLogFile), fm.OutputPath(RunLogFile))
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestFormatRunLog(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	summary := RunSummary{
		RunID:      "run-1",
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Millisecond),
		InputDir:   "data/in",
		OutputDir:  "out",
		Currency:   "AUD",
		FilesRead:  []string{"jan_dump.csv"},
		RowsLoaded: 115,
		Artifacts:  []string{"out/report_pack.xlsx"},
		Warnings:   []string{"Rows with unparseable dates: 1"},
	}

	text := FormatRunLog(summary)
	lines := strings.Split(text, "\n")

	assert.Equal(t, "Analyst Reporting Suite - Run Log", lines[0])
	assert.Equal(t, "Generated: 2025-03-01 09:00:01", lines[1])
	assert.Contains(t, text, "Run ID: run-1\n")
	assert.Contains(t, text, "Currency: AUD\n")
	assert.Contains(t, text, "Rows loaded: 115\n")
	assert.Contains(t, text, "Duration: 1.5s\n")
	assert.Contains(t, text, "  out/report_pack.xlsx\n")
	assert.True(t, strings.HasSuffix(text, "Warnings:\n- Rows with unparseable dates: 1\n"))
	assert.NotContains(t, text, "Files skipped")
}

func TestFormatRunLog_NoWarnings(t *testing.T) {
	text := FormatRunLog(RunSummary{
		FilesSkipped: []SkippedFile{{InputFile: "old.xls", ErrorMessage: "unsupported workbook format"}},
	})

	assert.Contains(t, text, "Files skipped: 1\n  old.xls: unsupported workbook format\n")
	assert.Contains(t, text, "Artifacts:\n  (none)\n")
	assert.True(t, strings.HasSuffix(text, "Warnings:\n- (none)\n"))
}

func TestWriteRunLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", RunLogFile)
	summary := RunSummary{RunID: "abc", Currency: "NZD"}

	require.NoError(t, WriteRunLog(summary, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatRunLog(summary), string(data))
}
