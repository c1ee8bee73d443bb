package kpi

import (
	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// Table names, as used for workbook sheets.
const (
	TableSummary          = "Summary"
	TableTrends           = "Trends"
	TableVariance         = "Variance"
	TableDrilldownRegion  = "Drilldown_Region"
	TableDrilldownProduct = "Drilldown_Product"
)

// Table is a renderer-facing view of one KPI table. Cells hold
// decimal.NullDecimal, types.NullTime, types.NullString or string values.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// SummaryColumns are the Summary headers.
var SummaryColumns = []string{"metric", "value"}

// TrendColumns are the Trends headers.
func TrendColumns() []string {
	return append([]string{types.FieldMonth}, TrendMetrics...)
}

// VarianceColumns are the Variance headers: Trends followed by one
// abs/pct pair per metric.
func VarianceColumns() []string {
	cols := TrendColumns()
	for _, m := range VarianceMetrics {
		cols = append(cols, MoMAbsColumn(m), MoMPctColumn(m))
	}
	return cols
}

// DrilldownColumns are the headers of a drilldown by the given dimension.
func DrilldownColumns(dimension string) []string {
	return []string{types.FieldMonth, dimension, types.FieldRevenue, types.FieldGrossProfit}
}

// Tables returns all five tables in canonical order. Headers are present
// even when a table has no rows.
func (b *Bundle) Tables() []Table {
	tables := []Table{b.SummaryTable(), b.TrendsTable(), b.VarianceTable()}
	return append(tables, b.DrilldownTables()...)
}

// SummaryTable renders Summary.
func (b *Bundle) SummaryTable() Table {
	t := Table{Name: TableSummary, Columns: SummaryColumns}
	for _, r := range b.Summary {
		t.Rows = append(t.Rows, []any{r.Metric, r.Value})
	}
	return t
}

// TrendsTable renders Trends.
func (b *Bundle) TrendsTable() Table {
	t := Table{Name: TableTrends, Columns: TrendColumns()}
	for _, r := range b.Trends {
		t.Rows = append(t.Rows, trendCells(r))
	}
	return t
}

// VarianceTable renders Variance.
func (b *Bundle) VarianceTable() Table {
	t := Table{Name: TableVariance, Columns: VarianceColumns()}
	for _, r := range b.Variance {
		row := trendCells(r.TrendRow)
		for _, m := range VarianceMetrics {
			d := r.MoM[m]
			row = append(row, d.Abs, d.Pct)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DrilldownTables renders both drilldowns.
func (b *Bundle) DrilldownTables() []Table {
	return []Table{
		drilldownTable(TableDrilldownRegion, types.FieldRegion, b.DrilldownRegion),
		drilldownTable(TableDrilldownProduct, types.FieldProduct, b.DrilldownProduct),
	}
}

func trendCells(r TrendRow) []any {
	row := []any{r.Month}
	for _, m := range TrendMetrics {
		row = append(row, r.Metric(m))
	}
	return row
}

func drilldownTable(name, dimension string, rows []DrilldownRow) Table {
	t := Table{Name: name, Columns: DrilldownColumns(dimension)}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Month, r.Dimension, r.Revenue, r.GrossProfit})
	}
	return t
}
