// =============================================================================
// Analyst Reporting Suite - KPI Aggregator
// =============================================================================
//
// This module derives the five KPI tables from a cleaned fact table:
//
//   Summary            one row per metric: revenue, cost, gross_profit,
//                      margin, units, rows_loaded
//   Trends             one row per month, sums plus recomputed margin
//   Variance           Trends plus <metric>_mom_abs / <metric>_mom_pct
//   Drilldown_Region   one row per (month, region), revenue and gross_profit
//   Drilldown_Product  one row per (month, product), revenue and gross_profit
//
// AGGREGATION PIPELINE:
//   1. Derive month (first of month, null when date is null)
//   2. Derive per-row gross_profit = revenue - cost (null if either is null)
//   3. Group -> sum -> sort ascending, null keys last
//   4. Recompute margin at the aggregate level, never by summing ratios
//   5. Difference consecutive Trends rows for Variance
//
// Missing cost, units, region and product columns are treated as all-null,
// so grouping never fails. Rows with a null month are kept as their own
// group so they still count in the grand total.
//
// =============================================================================

package kpi

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// =============================================================================
// METRIC VOCABULARY
// =============================================================================

// SummaryMetrics are the Summary rows, in order.
var SummaryMetrics = []string{
	types.FieldRevenue,
	types.FieldCost,
	types.FieldGrossProfit,
	types.FieldMargin,
	types.FieldUnits,
	types.FieldRowsLoaded,
}

// TrendMetrics are the Trends value columns, in order.
var TrendMetrics = []string{
	types.FieldRevenue,
	types.FieldCost,
	types.FieldGrossProfit,
	types.FieldUnits,
	types.FieldMargin,
}

// VarianceMetrics are the metrics differenced month over month.
var VarianceMetrics = TrendMetrics

// MoMAbsColumn is the absolute-change column name for a metric.
func MoMAbsColumn(metric string) string { return metric + "_mom_abs" }

// MoMPctColumn is the percentage-change column name for a metric.
func MoMPctColumn(metric string) string { return metric + "_mom_pct" }

// =============================================================================
// RESULT TYPES
// =============================================================================

// SummaryRow is one metric of the grand-total summary.
type SummaryRow struct {
	Metric string
	Value  decimal.NullDecimal
}

// TrendRow is one month of aggregated values.
type TrendRow struct {
	Month       types.NullTime
	Revenue     decimal.NullDecimal
	Cost        decimal.NullDecimal
	GrossProfit decimal.NullDecimal
	Units       decimal.NullDecimal
	Margin      decimal.NullDecimal
}

// Metric returns a value column by name.
func (r TrendRow) Metric(name string) decimal.NullDecimal {
	switch name {
	case types.FieldRevenue:
		return r.Revenue
	case types.FieldCost:
		return r.Cost
	case types.FieldGrossProfit:
		return r.GrossProfit
	case types.FieldUnits:
		return r.Units
	case types.FieldMargin:
		return r.Margin
	}
	return null
}

// Delta is a month-over-month change.
type Delta struct {
	Abs decimal.NullDecimal
	Pct decimal.NullDecimal
}

// VarianceRow is a Trends row with its month-over-month changes.
type VarianceRow struct {
	TrendRow

	// MoM is keyed by metric name (see VarianceMetrics).
	MoM map[string]Delta
}

// DrilldownRow is one (month, dimension value) group.
type DrilldownRow struct {
	Month       types.NullTime
	Dimension   types.NullString
	Revenue     decimal.NullDecimal
	GrossProfit decimal.NullDecimal
}

// Bundle holds the five KPI tables.
type Bundle struct {
	Summary          []SummaryRow
	Trends           []TrendRow
	Variance         []VarianceRow
	DrilldownRegion  []DrilldownRow
	DrilldownProduct []DrilldownRow
}

// SummaryValue returns a Summary metric by name.
func (b *Bundle) SummaryValue(metric string) decimal.NullDecimal {
	for _, r := range b.Summary {
		if r.Metric == metric {
			return r.Value
		}
	}
	return null
}

// =============================================================================
// AGGREGATION
// =============================================================================

// facts is the fact table with the derived and synthesized columns filled
// in. All slices are exactly n long.
type facts struct {
	n           int
	month       []types.NullTime
	revenue     []decimal.NullDecimal
	cost        []decimal.NullDecimal
	units       []decimal.NullDecimal
	grossProfit []decimal.NullDecimal
	region      []types.NullString
	product     []types.NullString
}

// Build derives every KPI table from a fact table. It never fails; an empty
// table yields empty Trends, Variance and Drilldowns and a Summary with all
// six metrics.
func Build(fact *types.FactTable) *Bundle {
	f := prepare(fact)

	trends := buildTrends(f)
	return &Bundle{
		Summary:          buildSummary(f),
		Trends:           trends,
		Variance:         buildVariance(trends),
		DrilldownRegion:  buildDrilldown(f, f.region),
		DrilldownProduct: buildDrilldown(f, f.product),
	}
}

// prepare derives month and gross_profit and synthesizes absent columns.
func prepare(fact *types.FactTable) *facts {
	n := fact.Len
	f := &facts{
		n:       n,
		month:   make([]types.NullTime, n),
		revenue: decimalsOrNull(fact.Revenue, n),
		cost:    decimalsOrNull(fact.Cost, n),
		units:   decimalsOrNull(fact.Units, n),
		region:  stringsOrNull(fact.Region, n),
		product: stringsOrNull(fact.Product, n),
	}

	if fact.Date != nil {
		for i, d := range fact.Date {
			if d.Valid {
				f.month[i] = types.TimeOf(MonthOf(d.Time))
			}
		}
	}

	f.grossProfit = make([]decimal.NullDecimal, n)
	for i := 0; i < n; i++ {
		f.grossProfit[i] = Sub(f.revenue[i], f.cost[i])
	}

	return f
}

// MonthOf truncates a time to the first day of its calendar month.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func decimalsOrNull(values []decimal.NullDecimal, n int) []decimal.NullDecimal {
	if len(values) == n {
		return values
	}
	return make([]decimal.NullDecimal, n)
}

func stringsOrNull(values []types.NullString, n int) []types.NullString {
	if len(values) == n {
		return values
	}
	return make([]types.NullString, n)
}

// buildSummary applies the null policy to the grand totals.
func buildSummary(f *facts) []SummaryRow {
	revenue := valid(Sum(f.revenue))
	grossProfit := valid(Sum(f.grossProfit))

	values := map[string]decimal.NullDecimal{
		types.FieldRevenue:     revenue,
		types.FieldCost:        valid(Sum(f.cost)),
		types.FieldGrossProfit: grossProfit,
		types.FieldMargin:      Ratio(grossProfit, revenue),
		types.FieldUnits:       valid(Sum(f.units)),
		types.FieldRowsLoaded:  valid(decimal.NewFromInt(int64(f.n))),
	}

	rows := make([]SummaryRow, len(SummaryMetrics))
	for i, m := range SummaryMetrics {
		rows[i] = SummaryRow{Metric: m, Value: values[m]}
	}
	return rows
}

// buildTrends groups by month.
func buildTrends(f *facts) []TrendRow {
	groups := groupBy(f.n, func(i int) groupKey {
		return groupKey{month: f.month[i]}
	})

	rows := make([]TrendRow, len(groups))
	for gi, g := range groups {
		row := TrendRow{
			Month:       g.key.month,
			Revenue:     valid(sumRows(f.revenue, g.rows)),
			Cost:        valid(sumRows(f.cost, g.rows)),
			GrossProfit: valid(sumRows(f.grossProfit, g.rows)),
			Units:       valid(sumRows(f.units, g.rows)),
		}
		row.Margin = Ratio(row.GrossProfit, row.Revenue)
		rows[gi] = row
	}
	return rows
}

// buildVariance differences consecutive months. The first row has no prior
// month, and the null-month row is not a month in sequence, so both get
// null changes.
func buildVariance(trends []TrendRow) []VarianceRow {
	rows := make([]VarianceRow, len(trends))
	for i, cur := range trends {
		mom := make(map[string]Delta, len(VarianceMetrics))
		for _, m := range VarianceMetrics {
			d := Delta{}
			if i > 0 && cur.Month.Valid && trends[i-1].Month.Valid {
				prev := trends[i-1].Metric(m)
				d.Abs = Diff(cur.Metric(m), prev)
				d.Pct = PctChange(cur.Metric(m), prev)
			}
			mom[m] = d
		}
		rows[i] = VarianceRow{TrendRow: cur, MoM: mom}
	}
	return rows
}

// buildDrilldown groups by (month, dimension).
func buildDrilldown(f *facts, dim []types.NullString) []DrilldownRow {
	groups := groupBy(f.n, func(i int) groupKey {
		return groupKey{month: f.month[i], dim: dim[i]}
	})

	rows := make([]DrilldownRow, len(groups))
	for gi, g := range groups {
		rows[gi] = DrilldownRow{
			Month:       g.key.month,
			Dimension:   g.key.dim,
			Revenue:     valid(sumRows(f.revenue, g.rows)),
			GrossProfit: valid(sumRows(f.grossProfit, g.rows)),
		}
	}
	return rows
}

// =============================================================================
// GROUPING
// =============================================================================

// groupKey identifies a group. Null months and null dimension values are
// keys of their own.
type groupKey struct {
	month types.NullTime
	dim   types.NullString
}

type group struct {
	key  groupKey
	rows []int
}

// groupBy collects row indices per key in first-appearance order, then
// sorts by (month, dim) ascending with nulls last.
func groupBy(n int, keyOf func(i int) groupKey) []group {
	index := make(map[groupKey]int)
	var groups []group

	for i := 0; i < n; i++ {
		k := keyOf(i)
		// Normalize null payloads so all nulls share one map key.
		if !k.month.Valid {
			k.month = types.NullTime{}
		}
		if !k.dim.Valid {
			k.dim = types.NullString{}
		}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, group{key: k})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if c := compareMonth(groups[a].key.month, groups[b].key.month); c != 0 {
			return c < 0
		}
		return compareDim(groups[a].key.dim, groups[b].key.dim) < 0
	})
	return groups
}

func compareMonth(a, b types.NullTime) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid && !b.Valid:
		return 0
	}
	return a.Time.Compare(b.Time)
}

func compareDim(a, b types.NullString) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid && !b.Valid:
		return 0
	}
	return strings.Compare(a.String, b.String)
}

// sumRows applies Sum to the selected rows.
func sumRows(values []decimal.NullDecimal, rows []int) decimal.Decimal {
	picked := make([]decimal.NullDecimal, len(rows))
	for j, i := range rows {
		picked[j] = values[i]
	}
	return Sum(picked)
}
