// =============================================================================
// Analyst Reporting Suite - Report Pack Writer
// =============================================================================
//
// This module renders the KPI tables as a formatted Excel workbook.
//
// WORKBOOK LAYOUT:
//   ExecutiveSummary  title, subtitle, headline figures, notes
//   Summary           metric | value
//   Trends            one row per month
//   Variance          Trends plus month-over-month changes, colour-scaled
//   Drilldowns        optional WARNINGS block, then two titled tables:
//                       "Revenue & GP by Month x Region"
//                       "Revenue & GP by Month x Product"
//
// FORMATTING:
//   - Header rows bold, centred, light blue-grey fill
//   - Number formats picked from the column name (see columnFormat)
//   - Panes frozen below the header; columns auto-fit between 10 and 45
//   - Null dimension values shown as "Unknown"
//
// CUSTOMIZATION:
//   - Change the header look in newStyleSet
//   - Add executive summary rows in writeExecutiveSummary
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/kpi"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// Sheet names.
const (
	SheetExecutiveSummary = "ExecutiveSummary"
	SheetSummary          = kpi.TableSummary
	SheetTrends           = kpi.TableTrends
	SheetVariance         = kpi.TableVariance
	SheetDrilldowns       = "Drilldowns"
)

// Drilldown table titles.
const (
	RegionDrilldownTitle  = "Revenue & GP by Month x Region"
	ProductDrilldownTitle = "Revenue & GP by Month x Product"
)

// notAvailable fills executive summary values that cannot be computed.
const notAvailable = "N/A"

// =============================================================================
// PACK OPTIONS
// =============================================================================

// PackOptions contains options for the report pack.
type PackOptions struct {
	// CurrencyCode prefixes money values.
	// Default: "AUD"
	CurrencyCode string

	// Title and Subtitle head the executive summary.
	Title    string
	Subtitle string

	// Notes are appended to the executive summary, one row each.
	Notes []string

	// Warnings are listed above the drilldown tables.
	Warnings []string
}

// DefaultPackOptions returns the default pack options.
func DefaultPackOptions() PackOptions {
	return PackOptions{
		CurrencyCode: "AUD",
		Title:        "Analyst Reporting Pack",
		Subtitle:     "Automated KPI pack from monthly sales dumps",
	}
}

// =============================================================================
// PACK GENERATION
// =============================================================================

// WriteReportPack renders bundle to an .xlsx file at path.
//
// PARAMETERS:
//   - path: The destination workbook.
//   - bundle: The KPI tables.
//   - opts: Currency, titles, notes and warnings.
//
// RETURNS:
//   - An error if any sheet cannot be written or the file cannot be saved.
func WriteReportPack(path string, bundle *kpi.Bundle, opts PackOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyleSet(f, opts.CurrencyCode)
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetExecutiveSummary); err != nil {
		return fmt.Errorf("failed to name first sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetTrends, SheetVariance, SheetDrilldowns} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	steps := []struct {
		name  string
		write func() error
	}{
		{SheetExecutiveSummary, func() error { return writeExecutiveSummary(f, styles, bundle, opts) }},
		{SheetSummary, func() error { return writeSummary(f, styles, bundle) }},
		{SheetTrends, func() error { return writeFlatTable(f, styles, bundle.TrendsTable()) }},
		{SheetVariance, func() error { return writeVariance(f, styles, bundle.VarianceTable()) }},
		{SheetDrilldowns, func() error { return writeDrilldowns(f, styles, bundle, opts.Warnings) }},
	}
	for _, step := range steps {
		if err := step.write(); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", step.name, err)
		}
	}

	f.SetActiveSheet(0)
	return save(f, path)
}

// save writes the workbook, creating the parent directory.
func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// SHEETS
// =============================================================================

func writeExecutiveSummary(f *excelize.File, styles *styleSet, bundle *kpi.Bundle, opts PackOptions) error {
	w := newSheetWriter(f, SheetExecutiveSummary, styles)
	h := bundle.Highlights()

	if err := w.set(1, 1, opts.Title, styles.heading); err != nil {
		return err
	}
	if err := w.set(1, 2, opts.Subtitle, 0); err != nil {
		return err
	}

	latest := notAvailable
	if h.LatestMonth.Valid {
		latest = h.LatestMonth.Time.Format("2006-01")
	}

	type insight struct {
		label  string
		value  any
		format formatKind
	}
	orNA := func(v any, valid bool) any {
		if !valid {
			return notAvailable
		}
		return v
	}

	insights := []insight{
		{"Latest month", latest, formatNone},
		{"Rows loaded", h.RowsLoaded, formatInt},
		{"Revenue", h.Revenue, formatCurrency},
		{"Margin", orNA(h.Margin, h.Margin.Valid), formatPercent},
		{"Revenue MoM", orNA(h.RevenueMoMPct, h.RevenueMoMPct.Valid), formatPercent},
		{"Margin change (MoM)", orNA(h.MarginMoMAbs, h.MarginMoMAbs.Valid), formatPercent},
	}
	for _, top := range []struct {
		what string
		row  *kpi.DrilldownRow
	}{{"region", h.TopRegion}, {"product", h.TopProduct}} {
		if top.row == nil {
			insights = append(insights, insight{fmt.Sprintf("Top %s by revenue (%s)", top.what, latest), notAvailable, formatNone})
			continue
		}
		insights = append(insights,
			insight{fmt.Sprintf("Top %s by revenue (%s)", top.what, latest), dimensionLabel(top.row.Dimension), formatNone},
			insight{fmt.Sprintf("Top %s revenue (%s)", top.what, latest), top.row.Revenue, formatCurrency},
		)
	}
	insights = append(insights, insight{"Currency", currencyLabel(opts.CurrencyCode), formatNone})
	for _, note := range opts.Notes {
		insights = append(insights, insight{"Note", note, formatNone})
	}

	const headerRow = 4
	if err := w.header(headerRow, []string{"Insight", "Value"}); err != nil {
		return err
	}
	for i, in := range insights {
		row := headerRow + 1 + i
		if err := w.set(1, row, in.label, 0); err != nil {
			return err
		}
		style := 0
		if _, isText := in.value.(string); !isText {
			style = styles.format(in.format)
		}
		if err := w.set(2, row, in.value, style); err != nil {
			return err
		}
	}

	if err := w.freezeBelow(headerRow + 1); err != nil {
		return err
	}
	return w.autoFit()
}

func writeSummary(f *excelize.File, styles *styleSet, bundle *kpi.Bundle) error {
	w := newSheetWriter(f, SheetSummary, styles)

	if err := w.header(1, kpi.SummaryColumns); err != nil {
		return err
	}
	for i, r := range bundle.Summary {
		if err := w.set(1, i+2, r.Metric, 0); err != nil {
			return err
		}
		if err := w.set(2, i+2, r.Value, styles.format(columnFormat(r.Metric))); err != nil {
			return err
		}
	}

	if err := w.freezeBelow(2); err != nil {
		return err
	}
	return w.autoFit()
}

func writeFlatTable(f *excelize.File, styles *styleSet, t kpi.Table) error {
	w := newSheetWriter(f, t.Name, styles)
	if _, err := w.table(1, t.Columns, t.Rows, nil); err != nil {
		return err
	}
	if err := w.freezeBelow(2); err != nil {
		return err
	}
	return w.autoFit()
}

// writeVariance adds a red-yellow-green scale centred on zero to every
// *_mom_pct column.
func writeVariance(f *excelize.File, styles *styleSet, t kpi.Table) error {
	if err := writeFlatTable(f, styles, t); err != nil {
		return err
	}
	if len(t.Rows) < 2 {
		return nil
	}

	lastRow := len(t.Rows) + 1
	for c, name := range t.Columns {
		if !isPctChangeColumn(name) {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		rng := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		if err := f.SetConditionalFormat(t.Name, rng, []excelize.ConditionalFormatOptions{{
			Type:     "3_color_scale",
			Criteria: "=",
			MinType:  "min",
			MidType:  "num",
			MidValue: "0",
			MaxType:  "max",
			MinColor: "#" + ScaleLowColor,
			MidColor: "#" + ScaleMidColor,
			MaxColor: "#" + ScaleHighColor,
		}}); err != nil {
			return fmt.Errorf("failed to add colour scale to %s: %w", rng, err)
		}
	}
	return nil
}

func isPctChangeColumn(name string) bool {
	for _, m := range kpi.VarianceMetrics {
		if name == kpi.MoMPctColumn(m) {
			return true
		}
	}
	return false
}

func writeDrilldowns(f *excelize.File, styles *styleSet, bundle *kpi.Bundle, warnings []string) error {
	w := newSheetWriter(f, SheetDrilldowns, styles)

	next := 0
	if len(warnings) > 0 {
		if err := w.set(1, 1, "WARNINGS", styles.title); err != nil {
			return err
		}
		for i, warning := range warnings {
			if err := w.set(1, i+2, warning, 0); err != nil {
				return err
			}
		}
		next = len(warnings) + 3
	}

	tables := bundle.DrilldownTables()
	titles := []string{RegionDrilldownTitle, ProductDrilldownTitle}
	dims := map[string]bool{types.FieldRegion: true, types.FieldProduct: true}

	for i, t := range tables {
		// Title, a spacer row, then the table.
		if err := w.set(1, next+1, titles[i], styles.title); err != nil {
			return err
		}
		if _, err := w.table(next+3, t.Columns, t.Rows, dims); err != nil {
			return err
		}
		next += len(t.Rows) + 6
	}

	return w.autoFit()
}
