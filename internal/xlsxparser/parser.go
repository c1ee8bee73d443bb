// =============================================================================
// Analyst Reporting Suite - XLSX Parser Module
// =============================================================================
//
// This module reads the first worksheet of an .xlsx extract into a raw
// column table.
//
// SHEET LAYOUT:
//   Row 1 holds the headers; every following non-blank row is data.
//
//   | Transaction Date | State | SKU      | Sales($) | COGS  | Qty |
//   |------------------|-------|----------|----------|-------|-----|
//   | 45658            | NSW   | Widget A | 512.40   | 300.1 | 4   |
//
// Cells are read as raw stored values. Date cells therefore arrive as their
// spreadsheet serial number and are turned into dates by the cleaning
// module's serial-date rule.
//
// Legacy .xls (BIFF) workbooks are not readable and return
// ErrUnsupportedFormat.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// ErrUnsupportedFormat is returned for workbook formats excelize cannot open.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of an XLSX workbook.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//
// RETURNS:
//   - The raw table, one column per header cell.
//   - ErrUnsupportedFormat for .xls files, or an error if the workbook
//     cannot be opened or read.
func Parse(filePath string) (*types.Table, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".xls") {
		return nil, fmt.Errorf("%w: %s (save it as .xlsx)", ErrUnsupportedFormat, filepath.Base(filePath))
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	return ParseSheet(f, sheetName)
}

// ParseSheet reads one sheet of an open workbook.
func ParseSheet(f *excelize.File, sheetName string) (*types.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var records [][]string
	for _, row := range rows {
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		records = append(records, row)
	}

	if len(records) == 0 {
		return &types.Table{}, nil
	}

	headers := headerNames(records[0])
	table := &types.Table{Columns: make([]types.Column, len(headers))}
	data := records[1:]

	for c, header := range headers {
		values := make([]any, len(data))
		for r, row := range data {
			// GetRows trims trailing empty cells, so short rows are common.
			if c < len(row) && row[c] != "" {
				values[r] = row[c]
			}
		}
		table.Columns[c] = types.Column{Name: header, Values: values}
	}

	return table, nil
}

// headerNames names blank header cells Column_<n>.
func headerNames(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
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
