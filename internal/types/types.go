// =============================================================================
// Analyst Reporting Suite - Shared Types
// =============================================================================
//
// This package contains the tabular types passed between pipeline stages.
// Keeping them here avoids import cycles between the readers, the cleaning
// stage, the KPI aggregator and the renderers. Types defined here are used by:
//   - csvparser / xlsxparser / ingest  (raw Table)
//   - cleaning / validation / kpi       (FactTable)
//   - quality / exporter / xlsxwriter   (FactTable, read-only)
//
// OWNERSHIP:
//   A stage that returns a table hands it to the next stage and never
//   mutates it again.
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FIELD VOCABULARY
// =============================================================================
// Column names downstream consumers key off. Renaming any of them is a
// breaking change for the report pack and the cleaned data export.

const (
	FieldDate       = "date"
	FieldRevenue    = "revenue"
	FieldCost       = "cost"
	FieldUnits      = "units"
	FieldRegion     = "region"
	FieldProduct    = "product"
	FieldSourceFile = "source_file"

	FieldMonth       = "month"
	FieldGrossProfit = "gross_profit"
	FieldMargin      = "margin"
	FieldRowsLoaded  = "rows_loaded"
)

// NumericFields are the canonical columns parsed as decimals.
var NumericFields = []string{FieldRevenue, FieldCost, FieldUnits}

// DimensionFields are the canonical short-text columns.
var DimensionFields = []string{FieldRegion, FieldProduct, FieldSourceFile}

// =============================================================================
// RAW TABLE
// =============================================================================

// Column is a named column of heterogeneous raw values.
// A nil entry is a missing value. Readers produce string, float64, int64,
// bool or time.Time values.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered set of equally long columns, as read from a source
// file. Column names may repeat until the schema normalizer merges them.
type Table struct {
	Columns []Column
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the first column with the given name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the first column with the given name.
func (t *Table) Lookup(name string) (Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// =============================================================================
// NULLABLE SCALARS
// =============================================================================
// Decimals use decimal.NullDecimal; dates and text get the equivalent shape.

// NullTime is a calendar value that may be missing.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// NullString is a text value that may be missing.
type NullString struct {
	String string
	Valid  bool
}

// TimeOf wraps a valid time.
func TimeOf(t time.Time) NullTime { return NullTime{Time: t, Valid: true} }

// StringOf wraps a valid string.
func StringOf(s string) NullString { return NullString{String: s, Valid: true} }

// =============================================================================
// FACT TABLE
// =============================================================================

// FactTable is the cleaned, row-per-transaction table.
//
// Every canonical field is optional. A field is present when its name is in
// Columns; the matching typed slice is then exactly Len long. Absent fields
// have nil slices. Unmapped source columns travel in Text as trimmed,
// null-normalized strings.
type FactTable struct {
	// Len is the number of rows.
	Len int

	// Columns is the column order, canonical and passthrough names mixed,
	// as produced by the schema normalizer.
	Columns []string

	Date       []NullTime
	Revenue    []decimal.NullDecimal
	Cost       []decimal.NullDecimal
	Units      []decimal.NullDecimal
	Region     []NullString
	Product    []NullString
	SourceFile []NullString

	// Text holds passthrough columns keyed by name.
	Text map[string][]NullString
}

// Has reports whether the named column is present.
func (f *FactTable) Has(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Decimals returns the decimal column for revenue, cost or units.
func (f *FactTable) Decimals(name string) []decimal.NullDecimal {
	switch name {
	case FieldRevenue:
		return f.Revenue
	case FieldCost:
		return f.Cost
	case FieldUnits:
		return f.Units
	}
	return nil
}

// Strings returns a dimension or passthrough text column.
func (f *FactTable) Strings(name string) []NullString {
	switch name {
	case FieldRegion:
		return f.Region
	case FieldProduct:
		return f.Product
	case FieldSourceFile:
		return f.SourceFile
	}
	return f.Text[name]
}

// IsNull reports whether the cell at row i of the named column is missing.
// Unknown columns report true.
func (f *FactTable) IsNull(name string, i int) bool {
	switch name {
	case FieldDate:
		return !f.Date[i].Valid
	case FieldRevenue, FieldCost, FieldUnits:
		return !f.Decimals(name)[i].Valid
	}
	if col := f.Strings(name); col != nil {
		return !col[i].Valid
	}
	return true
}

// NullCount returns the number of missing cells in the named column.
func (f *FactTable) NullCount(name string) int {
	if !f.Has(name) {
		return f.Len
	}
	n := 0
	for i := 0; i < f.Len; i++ {
		if f.IsNull(name, i) {
			n++
		}
	}
	return n
}
