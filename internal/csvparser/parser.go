// =============================================================================
// Analyst Reporting Suite - CSV Parser Module
// =============================================================================
//
// This module reads delimited sales extracts into a raw column table.
//
// FEATURES:
//   - UTF-8 input with or without a byte order mark
//   - Latin-1 fallback when the file is not valid UTF-8 (older ERP exports)
//   - Ragged rows: short rows are padded with nulls, extra cells dropped
//   - Blank lines are skipped
//   - Empty cells become nulls; other cells are kept verbatim as strings
//
// Type coercion is not done here; the cleaning module owns it.
//
// CUSTOMIZATION:
//   - Add delimiter aliases to configureReader
//   - Add encodings to decode
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

var utf8BOM = []byte("\xEF\xBB\xBF")

// Settings controls how a file is split into fields.
type Settings struct {
	// Delimiter is the field separator. Accepts a single character or one
	// of "tab", "pipe", "semicolon". Default: ","
	Delimiter string
}

// DefaultSettings returns comma-separated settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ","}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its columns.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Field splitting settings.
//
// RETURNS:
//   - The raw table, one column per header cell.
//   - An error if the file cannot be opened or is malformed.
func Parse(filePath string, settings Settings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, settings)
}

// ParseReader reads CSV content from r.
//
// PARSING PROCESS:
//   1. Read the content and decode it to UTF-8
//   2. Read every record with a lenient csv.Reader
//   3. Take the first non-blank record as headers
//   4. Collect the remaining non-blank records column by column
func ParseReader(r io.Reader, settings Settings) (*types.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	content, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	csvReader := csv.NewReader(bytes.NewReader(content))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	var records [][]string
	for _, row := range allRows {
		if !isRowEmpty(row) {
			records = append(records, row)
		}
	}

	if len(records) == 0 {
		return &types.Table{}, nil
	}

	headers := cleanHeaders(records[0])
	return buildTable(headers, records[1:]), nil
}

// decode strips a UTF-8 byte order mark, and re-decodes content that is
// not valid UTF-8 as ISO-8859-1.
func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(raw)
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if r, _ := utf8.DecodeRuneInString(settings.Delimiter); r != utf8.RuneError {
			reader.Comma = r
		} else {
			reader.Comma = ','
		}
	}

	// Extracts are hand-edited often enough that strictness does more harm
	// than good.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders names blank header cells Column_<n>.
// Surrounding whitespace is kept; the normalizer canonicalizes names.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// buildTable transposes records into columns.
func buildTable(headers []string, records [][]string) *types.Table {
	table := &types.Table{Columns: make([]types.Column, len(headers))}

	for c, header := range headers {
		values := make([]any, len(records))
		for r, row := range records {
			if c < len(row) && row[c] != "" {
				values[r] = row[c]
			}
		}
		table.Columns[c] = types.Column{Name: header, Values: values}
	}

	return table
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
