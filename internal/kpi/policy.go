// =============================================================================
// Analyst Reporting Suite - Null Policy
// =============================================================================
//
// Every aggregate and ratio in the KPI tables goes through these functions,
// so Summary, Trends and Variance share one rule set:
//
//   Sum        ignores nulls; no valid values sums to zero
//   Ratio      null when either side is null or the denominator is zero
//   Diff       null when either side is null
//   PctChange  null when either side is null or the base is zero
//
// Nothing here can divide by zero or produce NaN/Inf.
//
// =============================================================================

package kpi

import (
	"github.com/shopspring/decimal"
)

// null is the missing decimal.
var null = decimal.NullDecimal{}

// valid wraps a decimal.
func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// Sum adds the valid values.
func Sum(values []decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total
}

// Sub is a - b with null propagation.
func Sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return null
	}
	return valid(a.Decimal.Sub(b.Decimal))
}

// Ratio is num / den, null when den is null or zero or num is null.
func Ratio(num, den decimal.NullDecimal) decimal.NullDecimal {
	if !num.Valid || !den.Valid || den.Decimal.IsZero() {
		return null
	}
	return valid(num.Decimal.Div(den.Decimal))
}

// Diff is the absolute change from prev to cur.
func Diff(cur, prev decimal.NullDecimal) decimal.NullDecimal {
	return Sub(cur, prev)
}

// PctChange is (cur - prev) / prev.
func PctChange(cur, prev decimal.NullDecimal) decimal.NullDecimal {
	return Ratio(Sub(cur, prev), prev)
}
