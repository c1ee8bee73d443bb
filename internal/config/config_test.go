package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data/in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, "AUD", cfg.CurrencyCode)
	assert.True(t, cfg.WriteExcelPack.Enabled())
	assert.False(t, cfg.WriteParquet.Enabled())
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMainConfig_File(t *testing.T) {
	path := writeConfig(t, `
input_dir: extracts
out_dir: reports
currency_code: " usd "
notes: "Prepared for the board"
aliases:
  Invoice Total: revenue
write_cleaned_csv: "no"
write_parquet: on
write_run_log: maybe
max_concurrency: 2
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "extracts", cfg.InputDir)
	assert.Equal(t, "reports", cfg.OutDir)
	assert.Equal(t, "USD", cfg.CurrencyCode)
	assert.Equal(t, Notes{"Prepared for the board"}, cfg.Notes)
	assert.Equal(t, map[string]string{"Invoice Total": "revenue"}, cfg.AliasTable())
	assert.False(t, cfg.WriteCleanedCSV.Enabled())
	assert.True(t, cfg.WriteParquet.Enabled())
	// Unrecognised toggle words keep the default.
	assert.True(t, cfg.WriteRunLog.Enabled())
	assert.Equal(t, 2, cfg.MaxConcurrency)
}

func TestLoadMainConfig_NotesList(t *testing.T) {
	path := writeConfig(t, "notes:\n  - first\n  - \"  \"\n  - second\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Notes{"first", "second"}, cfg.Notes)
}

func TestLoadMainConfig_InvalidAliases(t *testing.T) {
	path := writeConfig(t, "aliases:\n  - revenue\n")

	_, err := LoadMainConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAliases)
}

func TestLoadMainConfig_InvalidCurrency(t *testing.T) {
	path := writeConfig(t, "currency_code: dollars\n")

	_, err := LoadMainConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CurrencyCode")
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMainConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadMainConfig(DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, Default().OutDir, cfg.OutDir)
}

func TestLoadMainConfig_Environment(t *testing.T) {
	path := writeConfig(t, "out_dir: from-file\ncurrency_code: NZD\n")
	t.Setenv("REPORTER_OUT_DIR", "from-env")
	t.Setenv("REPORTER_WRITE_METRICS", "off")
	t.Setenv("REPORTER_ALIASES", "Booked On:date, Net:revenue")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.OutDir)
	assert.Equal(t, "NZD", cfg.CurrencyCode)
	assert.False(t, cfg.WriteMetrics.Enabled())
	assert.Equal(t, map[string]string{"Booked On": "date", "Net": "revenue"}, cfg.AliasTable())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.ApplyOverrides(Overrides{OutDir: "elsewhere", CurrencyCode: "eur"}))
	assert.Equal(t, "data/in", cfg.InputDir)
	assert.Equal(t, "elsewhere", cfg.OutDir)
	assert.Equal(t, "EUR", cfg.CurrencyCode)

	assert.Error(t, cfg.ApplyOverrides(Overrides{CurrencyCode: "E1"}))
}

func TestValidate_SerialWindow(t *testing.T) {
	cfg := Default()
	cfg.SerialDateMin = 500
	cfg.SerialDateMax = 100
	assert.Error(t, cfg.Validate())
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"YES", true, true},
		{" on ", true, true},
		{"1", true, true},
		{"n", false, true},
		{"Off", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseToggle(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
