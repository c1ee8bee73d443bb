package xlsxwriter

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// Column width bounds for auto-fit.
const (
	minColumnWidth = 10
	maxColumnWidth = 45
)

// UnknownLabel stands in for null dimension values.
const UnknownLabel = "Unknown"

// sheetWriter writes cells to one sheet and tracks the widest value per
// column for auto-fit.
type sheetWriter struct {
	f      *excelize.File
	name   string
	styles *styleSet
	widths map[int]int

	// plain disables per-column number formats.
	plain bool
}

func newSheetWriter(f *excelize.File, name string, styles *styleSet) *sheetWriter {
	return &sheetWriter{f: f, name: name, styles: styles, widths: make(map[int]int)}
}

// set writes v at (col, row), both 1-based, with an optional style. Null
// values leave the cell empty.
func (w *sheetWriter) set(col, row int, v any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	value, display := cellValue(v)
	if value == nil {
		return nil
	}

	if err := w.f.SetCellValue(w.name, cell, value); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", w.name, cell, err)
	}
	if style != 0 {
		if err := w.f.SetCellStyle(w.name, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style %s!%s: %w", w.name, cell, err)
		}
	}

	if n := utf8.RuneCountInString(display); n > w.widths[col] {
		w.widths[col] = n
	}
	return nil
}

// header writes a styled header row starting at column 1.
func (w *sheetWriter) header(row int, names []string) error {
	for c, name := range names {
		if err := w.set(c+1, row, name, w.styles.header); err != nil {
			return err
		}
	}
	return nil
}

// table writes a header row and data rows, formatting each column by its
// header name. Returns the last row written.
func (w *sheetWriter) table(headerRow int, columns []string, rows [][]any, dimensions map[string]bool) (int, error) {
	if err := w.header(headerRow, columns); err != nil {
		return 0, err
	}

	for r, row := range rows {
		for c, v := range row {
			if dimensions[columns[c]] {
				v = dimensionLabel(v)
			}
			style := 0
			if !w.plain {
				style = w.styles.format(columnFormat(columns[c]))
			}
			if err := w.set(c+1, headerRow+1+r, v, style); err != nil {
				return 0, err
			}
		}
	}
	return headerRow + len(rows), nil
}

// freezeBelow freezes every row above row.
func (w *sheetWriter) freezeBelow(row int) error {
	topLeft, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetPanes(w.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      row - 1,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

// autoFit sizes each written column to its widest value plus padding,
// clamped to [minColumnWidth, maxColumnWidth].
func (w *sheetWriter) autoFit() error {
	for col, n := range w.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.name, name, name, float64(columnWidth(n))); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}

func columnWidth(longest int) int {
	return max(minColumnWidth, min(longest+2, maxColumnWidth))
}

// dimensionLabel shows null dimension values as UnknownLabel.
func dimensionLabel(v any) any {
	if s, ok := v.(types.NullString); ok && !s.Valid {
		return UnknownLabel
	}
	return v
}

// cellValue converts a table cell to something excelize can write plus its
// display text for width estimation. Nulls convert to nil.
func cellValue(v any) (any, string) {
	switch x := v.(type) {
	case nil:
		return nil, ""
	case decimal.NullDecimal:
		if !x.Valid {
			return nil, ""
		}
		return cellValue(x.Decimal)
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, x.StringFixed(2)
	case types.NullTime:
		if !x.Valid {
			return nil, ""
		}
		return x.Time, x.Time.Format("2006-01-02")
	case time.Time:
		return x, x.Format("2006-01-02")
	case types.NullString:
		if !x.Valid {
			return nil, ""
		}
		return x.String, x.String
	case string:
		return x, x
	case int:
		return x, strconv.Itoa(x)
	case bool:
		return x, strconv.FormatBool(x)
	case float64:
		return x, strconv.FormatFloat(x, 'f', -1, 64)
	}
	return v, fmt.Sprint(v)
}
