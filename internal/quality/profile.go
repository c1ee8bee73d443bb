// =============================================================================
// Analyst Reporting Suite - Data Quality Profile
// =============================================================================
//
// This module profiles the cleaned fact table for the data-quality workbook.
//
// SECTIONS:
//   Overview       rows and columns
//   DateRange      min/max date, rows with valid and invalid dates
//   Duplicates     whole-row duplicate count
//   Missingness    per column: dtype, missing count and %, distinct values
//   TopCategories  ten most frequent values of region, product, source_file
//
// The profile is descriptive only. It never changes the data and never
// produces warnings; those belong to the validation module.
//
// =============================================================================

package quality

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// UnknownCategory stands in for null dimension values.
const UnknownCategory = "Unknown"

// TopN is the number of categories kept per dimension.
const TopN = 10

// Column dtypes reported in Missingness.
const (
	DtypeDatetime = "datetime"
	DtypeDecimal  = "decimal"
	DtypeString   = "string"
	DtypeEmpty    = "empty"
)

// Metric is one metric/value pair.
type Metric struct {
	Metric string
	Value  any
}

// ColumnProfile is one Missingness row.
type ColumnProfile struct {
	Column       string
	Dtype        string
	MissingCount int
	MissingPct   decimal.Decimal
	NUnique      int
}

// Category is one TopCategories row.
type Category struct {
	Column   string
	Category string
	Count    int
}

// Report is the full profile.
type Report struct {
	Overview      []Metric
	DateRange     []Metric
	Duplicates    []Metric
	Missingness   []ColumnProfile
	TopCategories []Category
}

// Build profiles a fact table.
func Build(fact *types.FactTable) *Report {
	return &Report{
		Overview: []Metric{
			{Metric: "rows", Value: fact.Len},
			{Metric: "columns", Value: len(fact.Columns)},
		},
		DateRange: dateRange(fact),
		Duplicates: []Metric{
			{Metric: "duplicate_rows", Value: DuplicateRows(fact)},
		},
		Missingness:   missingness(fact),
		TopCategories: topCategories(fact),
	}
}

// =============================================================================
// SECTIONS
// =============================================================================

func dateRange(fact *types.FactTable) []Metric {
	if !fact.Has(types.FieldDate) {
		return []Metric{{Metric: "date_column_present", Value: false}}
	}

	var lo, hi time.Time
	valid := 0
	for _, d := range fact.Date {
		if !d.Valid {
			continue
		}
		if valid == 0 || d.Time.Before(lo) {
			lo = d.Time
		}
		if valid == 0 || d.Time.After(hi) {
			hi = d.Time
		}
		valid++
	}

	minDate, maxDate := "", ""
	if valid > 0 {
		minDate = lo.Format("2006-01-02")
		maxDate = hi.Format("2006-01-02")
	}

	return []Metric{
		{Metric: "min_date", Value: minDate},
		{Metric: "max_date", Value: maxDate},
		{Metric: "rows_with_valid_date", Value: valid},
		{Metric: "rows_with_invalid_date", Value: fact.Len - valid},
	}
}

// missingness profiles every column, most-missing first.
func missingness(fact *types.FactTable) []ColumnProfile {
	hundred := decimal.NewFromInt(100)
	profiles := make([]ColumnProfile, 0, len(fact.Columns))

	for _, name := range fact.Columns {
		missing := fact.NullCount(name)
		pct := decimal.Zero
		if fact.Len > 0 {
			pct = decimal.NewFromInt(int64(missing)).Mul(hundred).
				Div(decimal.NewFromInt(int64(fact.Len))).Round(2)
		}

		distinct := make(map[string]struct{})
		for i := 0; i < fact.Len; i++ {
			if !fact.IsNull(name, i) {
				distinct[cellKey(fact, name, i)] = struct{}{}
			}
		}

		profiles = append(profiles, ColumnProfile{
			Column:       name,
			Dtype:        dtypeOf(name, missing, fact.Len),
			MissingCount: missing,
			MissingPct:   pct,
			NUnique:      len(distinct),
		})
	}

	sort.SliceStable(profiles, func(a, b int) bool {
		return profiles[a].MissingCount > profiles[b].MissingCount
	})
	return profiles
}

func dtypeOf(name string, missing, n int) string {
	if missing == n {
		return DtypeEmpty
	}
	switch name {
	case types.FieldDate:
		return DtypeDatetime
	case types.FieldRevenue, types.FieldCost, types.FieldUnits:
		return DtypeDecimal
	}
	return DtypeString
}

// topCategories counts dimension values, nulls as UnknownCategory. Ties
// keep first-appearance order.
func topCategories(fact *types.FactTable) []Category {
	var out []Category

	for _, dim := range types.DimensionFields {
		if !fact.Has(dim) {
			continue
		}

		counts := make(map[string]int)
		var order []string
		for _, v := range fact.Strings(dim) {
			label := UnknownCategory
			if v.Valid {
				label = v.String
			}
			if _, ok := counts[label]; !ok {
				order = append(order, label)
			}
			counts[label]++
		}

		sort.SliceStable(order, func(a, b int) bool {
			return counts[order[a]] > counts[order[b]]
		})
		if len(order) > TopN {
			order = order[:TopN]
		}
		for _, label := range order {
			out = append(out, Category{Column: dim, Category: label, Count: counts[label]})
		}
	}

	return out
}

// =============================================================================
// ROW IDENTITY
// =============================================================================

// DuplicateRows counts rows identical to an earlier row across every
// column.
func DuplicateRows(fact *types.FactTable) int {
	seen := make(map[xxh3.Uint128]struct{}, fact.Len)
	dups := 0

	var buf []byte
	for i := 0; i < fact.Len; i++ {
		buf = buf[:0]
		for _, name := range fact.Columns {
			key := cellKey(fact, name, i)
			// Length-prefix each cell so adjacent cells cannot run together.
			buf = strconv.AppendInt(buf, int64(len(key)), 10)
			buf = append(buf, ':')
			buf = append(buf, key...)
		}

		h := xxh3.Hash128(buf)
		if _, ok := seen[h]; ok {
			dups++
			continue
		}
		seen[h] = struct{}{}
	}

	return dups
}

// cellKey encodes one cell so that equal values, and only equal values,
// share a key. Decimals compare numerically.
func cellKey(fact *types.FactTable, name string, i int) string {
	if fact.IsNull(name, i) {
		return "\x00"
	}
	switch name {
	case types.FieldDate:
		return "d" + fact.Date[i].Time.Format(time.RFC3339Nano)
	case types.FieldRevenue, types.FieldCost, types.FieldUnits:
		return "n" + fact.Decimals(name)[i].Decimal.String()
	}
	return "s" + fact.Strings(name)[i].String
}
