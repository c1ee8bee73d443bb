// =============================================================================
// Analyst Reporting Suite - Data Quality Workbook Writer
// =============================================================================
//
// This module writes the data-quality profile to its own workbook, one
// sheet per profile section:
//   Overview, DateRange, Duplicates, Missingness, TopCategories
//
// Cells are written unformatted. Headers are styled, panes frozen below
// the header and columns auto-fit.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/quality"
)

// Quality workbook sheet names, in order.
const (
	SheetOverview      = "Overview"
	SheetDateRange     = "DateRange"
	SheetDuplicates    = "Duplicates"
	SheetMissingness   = "Missingness"
	SheetTopCategories = "TopCategories"
)

var metricColumns = []string{"metric", "value"}

// WriteQualityReport writes report to an .xlsx file at path.
func WriteQualityReport(path string, report *quality.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyleSet(f, "")
	if err != nil {
		return err
	}

	sheets := []struct {
		name    string
		columns []string
		rows    [][]any
	}{
		{SheetOverview, metricColumns, metricRows(report.Overview)},
		{SheetDateRange, metricColumns, metricRows(report.DateRange)},
		{SheetDuplicates, metricColumns, metricRows(report.Duplicates)},
		{SheetMissingness, []string{"column", "dtype", "missing_count", "missing_pct", "n_unique"}, missingnessRows(report.Missingness)},
		{SheetTopCategories, []string{"column", "category", "count"}, categoryRows(report.TopCategories)},
	}

	for i, s := range sheets {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.name, err)
		}

		w := newSheetWriter(f, s.name, styles)
		w.plain = true
		if _, err := w.table(1, s.columns, s.rows, nil); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", s.name, err)
		}
		if err := w.freezeBelow(2); err != nil {
			return err
		}
		if err := w.autoFit(); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return save(f, path)
}

func metricRows(metrics []quality.Metric) [][]any {
	rows := make([][]any, len(metrics))
	for i, m := range metrics {
		rows[i] = []any{m.Metric, m.Value}
	}
	return rows
}

func missingnessRows(profiles []quality.ColumnProfile) [][]any {
	rows := make([][]any, len(profiles))
	for i, p := range profiles {
		rows[i] = []any{p.Column, p.Dtype, p.MissingCount, p.MissingPct, p.NUnique}
	}
	return rows
}

func categoryRows(categories []quality.Category) [][]any {
	rows := make([][]any, len(categories))
	for i, c := range categories {
		rows[i] = []any{c.Column, c.Category, c.Count}
	}
	return rows
}
