package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jan_dump.csv")
	content := "\xEF\xBB\xBFTransaction Date, State ,Sales($),Qty\n" +
		"2025-01-03,NSW,120.50,4\n" +
		"\n" +
		"2025-01-04,VIC,,2\n" +
		"not a date,QLD,99\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Parse(path, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"Transaction Date", " State ", "Sales($)", "Qty"}, table.ColumnNames())
	assert.Equal(t, 3, table.RowCount())

	sales, ok := table.Lookup("Sales($)")
	require.True(t, ok)
	assert.Equal(t, []any{"120.50", nil, "99"}, sales.Values)

	qty, _ := table.Lookup("Qty")
	assert.Equal(t, []any{"4", "2", nil}, qty.Values)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.csv"), DefaultSettings())
	assert.Error(t, err)
}

func TestParseReader_Latin1Fallback(t *testing.T) {
	// "Café" in ISO-8859-1.
	content := []byte("product,revenue\nCaf\xe9,10\n")

	table, err := ParseReader(strings.NewReader(string(content)), DefaultSettings())
	require.NoError(t, err)

	product, _ := table.Lookup("product")
	assert.Equal(t, []any{"Café"}, product.Values)
}

func TestParseReader_BlankHeadersAndDelimiter(t *testing.T) {
	table, err := ParseReader(strings.NewReader("date;;revenue\n2025-01-01;x;5\n"), Settings{Delimiter: "semicolon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "Column_2", "revenue"}, table.ColumnNames())
}

func TestParseReader_Empty(t *testing.T) {
	table, err := ParseReader(strings.NewReader("\n\n"), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
	assert.Empty(t, table.Columns)
}

func TestParseReader_HeaderOnly(t *testing.T) {
	table, err := ParseReader(strings.NewReader("date,revenue\n"), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "revenue"}, table.ColumnNames())
	assert.Equal(t, 0, table.RowCount())
}
