package kpi

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// Highlights are the headline figures for the executive summary.
type Highlights struct {
	// LatestMonth is the most recent dated month; null when no row has a
	// valid date.
	LatestMonth types.NullTime

	RowsLoaded decimal.NullDecimal
	Revenue    decimal.NullDecimal
	Margin     decimal.NullDecimal

	// RevenueMoMPct and MarginMoMAbs are the last non-null month-over-month
	// changes.
	RevenueMoMPct decimal.NullDecimal
	MarginMoMAbs  decimal.NullDecimal

	// TopRegion and TopProduct are the highest-revenue groups of the latest
	// month, nil when there is none. Ties keep the first in sort order.
	TopRegion  *DrilldownRow
	TopProduct *DrilldownRow
}

// Highlights derives the executive summary figures.
func (b *Bundle) Highlights() Highlights {
	h := Highlights{
		RowsLoaded: b.SummaryValue(types.FieldRowsLoaded),
		Revenue:    b.SummaryValue(types.FieldRevenue),
		Margin:     b.SummaryValue(types.FieldMargin),
	}

	for _, r := range b.Trends {
		if r.Month.Valid && (!h.LatestMonth.Valid || r.Month.Time.After(h.LatestMonth.Time)) {
			h.LatestMonth = r.Month
		}
	}

	for _, r := range b.Variance {
		if d := r.MoM[types.FieldRevenue].Pct; d.Valid {
			h.RevenueMoMPct = d
		}
		if d := r.MoM[types.FieldMargin].Abs; d.Valid {
			h.MarginMoMAbs = d
		}
	}

	if h.LatestMonth.Valid {
		h.TopRegion = topByRevenue(b.DrilldownRegion, h.LatestMonth)
		h.TopProduct = topByRevenue(b.DrilldownProduct, h.LatestMonth)
	}

	return h
}

func topByRevenue(rows []DrilldownRow, month types.NullTime) *DrilldownRow {
	var top *DrilldownRow
	for i := range rows {
		r := &rows[i]
		if !r.Month.Valid || !r.Month.Time.Equal(month.Time) || !r.Revenue.Valid {
			continue
		}
		if top == nil || r.Revenue.Decimal.GreaterThan(top.Revenue.Decimal) {
			top = r
		}
	}
	return top
}
