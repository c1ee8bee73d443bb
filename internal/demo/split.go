// =============================================================================
// Analyst Reporting Suite - Monthly Splitter
// =============================================================================
//
// This module turns one flat sales export (Superstore-style) into a folder
// of monthly "dumps" shaped like raw ERP extracts, so ingest can be tested
// against realistic volume.
//
// INPUT COLUMNS:
//   Order Date                       required; rows without a date are dropped
//   State, or Region                 -> " State "
//   Product Name, or Sub-Category    -> SKU
//   Sales                            -> Sales($)
//   Profit                           COGS = Sales - Profit
//   Quantity                         -> Qty
//
// OUTPUT:
//   <YYYY-MM>_dump.xlsx for even months, <YYYY-MM>_dump.csv for odd months,
//   so both ingest paths are exercised.
//
// =============================================================================

package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/analyst-reporting/internal/cleaning"
	"github.com/ginjaninja78/analyst-reporting/internal/csvparser"
	"github.com/ginjaninja78/analyst-reporting/internal/exporter"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/ginjaninja78/analyst-reporting/pkg/utils"
)

// ErrMissingOrderDate is returned when the export has no Order Date column.
var ErrMissingOrderDate = errors.New(`missing "Order Date" column`)

// SplitHeaders are the headers of every split dump.
var SplitHeaders = []string{"Transaction Date", " State ", "SKU", "Sales($)", "COGS", "Qty"}

// flatRow is one dated row of the export.
type flatRow struct {
	date    time.Time
	region  types.NullString
	product types.NullString
	revenue decimal.NullDecimal
	cogs    decimal.NullDecimal
	qty     decimal.NullDecimal
}

// Split reads the flat export at input and writes one dump per month into
// outDir.
//
// PARAMETERS:
//   - input: Path to the flat CSV export.
//   - outDir: Destination folder, created if missing.
//   - logger: Optional; slog.Default() when nil.
//
// RETURNS:
//   - The dump paths written, in month order.
//   - An error if the export cannot be read or a dump cannot be written.
func Split(input, outDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !utils.FileExists(input) {
		return nil, fmt.Errorf("missing input file: %s", input)
	}

	table, err := csvparser.Parse(input, csvparser.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}

	rows, dropped, err := flatRows(table)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Warn("dropped rows without an order date", slog.Int("rows", dropped))
	}

	fm := utils.NewFileManager("", outDir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	byMonth := make(map[string][]flatRow)
	for _, r := range rows {
		key := r.date.Format("2006-01")
		byMonth[key] = append(byMonth[key], r)
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	writer := exporter.NewCSVWriter(logger)
	var written []string
	for _, m := range months {
		group := byMonth[m]

		var path string
		if group[0].date.Month()%2 == 0 {
			path = fm.OutputPath(m + "_dump.xlsx")
			err = writeWorkbook(path, SplitHeaders, dumpCells(group))
		} else {
			path = fm.OutputPath(m + "_dump.csv")
			err = writer.WriteCSV(path, exporter.WriteOptions{
				Headers: SplitHeaders,
				Records: dumpRecords(group),
			})
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}

		logger.Debug("wrote monthly dump", slog.String("path", path), slog.Int("rows", len(group)))
		written = append(written, path)
	}

	logger.Info("split export into monthly dumps", slog.String("dir", outDir), slog.Int("files", len(written)))
	return written, nil
}

// flatRows extracts the dated rows of the export. It returns the number of
// rows dropped for lacking a parseable order date.
func flatRows(t *types.Table) ([]flatRow, int, error) {
	dates, ok := t.Lookup("Order Date")
	if !ok {
		return nil, 0, ErrMissingOrderDate
	}

	region := firstColumn(t, "State", "Region")
	product := firstColumn(t, "Product Name", "Sub-Category")
	sales := firstColumn(t, "Sales")
	profit := firstColumn(t, "Profit")
	qty := firstColumn(t, "Quantity")

	var rows []flatRow
	dropped := 0
	for i, v := range dates.Values {
		text := cleaning.CoerceString(v)
		date, ok := cleaning.ParseDate(text.String)
		if !text.Valid || !ok {
			dropped++
			continue
		}

		r := flatRow{
			date:    date,
			region:  textAt(region, i),
			product: textAt(product, i),
			revenue: numberAt(sales, i),
			qty:     numberAt(qty, i),
		}
		if p := numberAt(profit, i); r.revenue.Valid && p.Valid {
			r.cogs = decimal.NewNullDecimal(r.revenue.Decimal.Sub(p.Decimal))
		}
		rows = append(rows, r)
	}
	return rows, dropped, nil
}

// firstColumn returns the values of the first named column present, or nil.
func firstColumn(t *types.Table, names ...string) []any {
	for _, name := range names {
		if col, ok := t.Lookup(name); ok {
			return col.Values
		}
	}
	return nil
}

func textAt(values []any, i int) types.NullString {
	if values == nil {
		return types.NullString{}
	}
	return cleaning.CoerceString(values[i])
}

func numberAt(values []any, i int) decimal.NullDecimal {
	return cleaning.ParseDecimal(textAt(values, i))
}

// dumpRecords renders rows for a CSV dump, nulls as empty cells.
func dumpRecords(rows []flatRow) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.date.Format(exporter.DateLayout),
			r.region.String,
			r.product.String,
			decimalText(r.revenue),
			decimalText(r.cogs),
			decimalText(r.qty),
		}
	}
	return records
}

// dumpCells renders rows for an XLSX dump with native dates and numbers.
func dumpCells(rows []flatRow) [][]any {
	cells := make([][]any, len(rows))
	for i, r := range rows {
		cells[i] = []any{
			r.date,
			nullableText(r.region),
			nullableText(r.product),
			decimalNumber(r.revenue),
			decimalNumber(r.cogs),
			decimalNumber(r.qty),
		}
	}
	return cells
}

func decimalText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func decimalNumber(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return f
}

func nullableText(s types.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
