package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/cleaning"
	"github.com/ginjaninja78/analyst-reporting/internal/config"
	"github.com/ginjaninja78/analyst-reporting/internal/demo"
	"github.com/ginjaninja78/analyst-reporting/internal/ingest"
	"github.com/ginjaninja78/analyst-reporting/internal/logging"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/ginjaninja78/analyst-reporting/pkg/utils"
)

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(t.TempDir(), "in")
	cfg.OutDir = filepath.Join(t.TempDir(), "out")
	return cfg
}

func run(t *testing.T, cfg *config.MainConfig) (*Result, error) {
	t.Helper()
	runner, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	return runner.Run(context.Background())
}

func TestRun_Demo(t *testing.T) {
	cfg := testConfig(t)
	cfg.WriteParquet = true
	_, err := demo.Generate(cfg.InputDir, logging.Discard())
	require.NoError(t, err)

	result, err := run(t, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Stats.FilesRead)
	assert.Equal(t, demo.JanuaryRows+demo.FebruaryRows, result.Stats.RowsLoaded)

	rows := result.Bundle.SummaryValue(types.FieldRowsLoaded)
	require.True(t, rows.Valid)
	assert.True(t, decimal.NewFromInt(115).Equal(rows.Decimal))

	// The unparseable January date forms a null month, sorted last.
	trends := result.Bundle.Trends
	require.Len(t, trends, 3)
	assert.Equal(t, "2025-01", trends[0].Month.Time.Format("2006-01"))
	assert.Equal(t, "2025-02", trends[1].Month.Time.Format("2006-01"))
	assert.False(t, trends[2].Month.Valid)

	variance := result.Bundle.Variance
	assert.False(t, variance[0].MoM[types.FieldRevenue].Abs.Valid)
	feb := variance[1].MoM[types.FieldRevenue].Abs
	require.True(t, feb.Valid)
	want := trends[1].Revenue.Decimal.Sub(trends[0].Revenue.Decimal)
	assert.True(t, want.Equal(feb.Decimal), "want %s got %s", want, feb.Decimal)

	assert.Contains(t, result.Warnings, "Rows with unparseable dates: 1")

	for _, name := range []string{
		utils.CleanedCSVFile, utils.CleanedParquetFile, utils.QualityReportFile,
		utils.ReportPackFile, utils.MetricsFile, utils.RunLogFile,
	} {
		path := filepath.Join(cfg.OutDir, name)
		assert.FileExists(t, path)
		assert.Contains(t, result.Artifacts, path)
	}

	log, err := os.ReadFile(filepath.Join(cfg.OutDir, utils.RunLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(log), "Run ID: "+result.RunID+"\n")
	assert.Contains(t, string(log), "Rows loaded: 115\n")
	assert.Contains(t, string(log), "  "+demo.JanuaryFile+"\n")
	assert.Contains(t, string(log), "- Rows with unparseable dates: 1")

	prom, err := os.ReadFile(filepath.Join(cfg.OutDir, utils.MetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `reporter_rows_total{kind="loaded"} 115`)
	assert.Contains(t, string(prom), `reporter_step_total{status="success",step="ingest"} 1`)

	f, err := excelize.OpenFile(filepath.Join(cfg.OutDir, utils.ReportPackFile))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Drilldowns", "A1")
	require.NoError(t, err)
	assert.Equal(t, "WARNINGS", v)
}

func TestRun_Toggles(t *testing.T) {
	cfg := testConfig(t)
	cfg.WriteCleanedCSV = false
	cfg.WriteQualityReport = false
	cfg.WriteMetrics = false
	cfg.WriteRunLog = false
	_, err := demo.Generate(cfg.InputDir, logging.Discard())
	require.NoError(t, err)

	result, err := run(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(cfg.OutDir, utils.ReportPackFile)}, result.Artifacts)
	assert.NoFileExists(t, filepath.Join(cfg.OutDir, utils.CleanedCSVFile))
	assert.NoFileExists(t, filepath.Join(cfg.OutDir, utils.RunLogFile))
}

func TestRun_NoInputFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))

	_, err := run(t, cfg)
	assert.ErrorIs(t, err, ingest.ErrNoInputFiles)
	assert.NoFileExists(t, filepath.Join(cfg.OutDir, utils.ReportPackFile))
}

func TestRun_SkipsUnreadableFiles(t *testing.T) {
	cfg := testConfig(t)
	_, err := demo.Generate(cfg.InputDir, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "legacy.xls"), []byte("BIFF"), 0o644))

	result, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.FilesSkipped)

	log, err := os.ReadFile(filepath.Join(cfg.OutDir, utils.RunLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(log), "Files skipped: 1\n  legacy.xls: ")
}

func TestRun_FailsOnUnreadableFileWhenStrict(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContinueOnError = false
	_, err := demo.Generate(cfg.InputDir, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "legacy.xls"), []byte("BIFF"), 0o644))

	_, err = run(t, cfg)
	assert.Error(t, err)
}

func TestNew_InvalidAliases(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aliases = config.Aliases{"Net Sales": "revenue", "net_sales": "cost"}

	_, err := New(cfg, logging.Discard())
	assert.ErrorIs(t, err, cleaning.ErrInvalidAliasTable)
}
