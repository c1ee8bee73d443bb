package kpi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

func TestHighlights(t *testing.T) {
	jan := types.TimeOf(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	feb := types.TimeOf(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))

	fact := &types.FactTable{
		Len:     6,
		Columns: []string{"date", "revenue", "cost", "region", "product"},
		Date:    []types.NullTime{jan, jan, feb, feb, feb, {}},
		Revenue: []decimal.NullDecimal{d("100"), d("100"), d("150"), d("90"), d("150"), d("999")},
		Cost:    []decimal.NullDecimal{d("50"), d("50"), d("60"), d("30"), d("60"), d("1")},
		Region: []types.NullString{
			types.StringOf("NSW"), types.StringOf("VIC"), types.StringOf("WA"),
			types.StringOf("NSW"), types.StringOf("NSW"), types.StringOf("QLD"),
		},
		Product: []types.NullString{
			types.StringOf("Widget A"), types.StringOf("Widget A"), {},
			types.StringOf("Widget B"), types.StringOf("Widget B"), types.StringOf("Widget C"),
		},
	}

	h := Build(fact).Highlights()

	assert.Equal(t, month(2025, time.February), h.LatestMonth)
	assertDecimal(t, "6", h.RowsLoaded)
	assertDecimal(t, "1589", h.Revenue)

	// Feb revenue 390 vs Jan 200.
	assertDecimal(t, "0.95", h.RevenueMoMPct)
	// Feb margin 240/390 vs Jan 100/200.
	want := decimal.NewFromInt(240).Div(decimal.NewFromInt(390)).Sub(decimal.RequireFromString("0.5"))
	require.True(t, h.MarginMoMAbs.Valid)
	assert.True(t, want.Equal(h.MarginMoMAbs.Decimal))

	// NSW 240 beats WA 150 in February; the undated QLD row is ignored.
	require.NotNil(t, h.TopRegion)
	assert.Equal(t, "NSW", h.TopRegion.Dimension.String)
	assertDecimal(t, "240", h.TopRegion.Revenue)

	require.NotNil(t, h.TopProduct)
	assert.Equal(t, "Widget B", h.TopProduct.Dimension.String)
}

func TestHighlights_NoDates(t *testing.T) {
	fact := &types.FactTable{
		Len:     1,
		Columns: []string{"revenue"},
		Revenue: []decimal.NullDecimal{d("5")},
	}

	h := Build(fact).Highlights()
	assert.False(t, h.LatestMonth.Valid)
	assert.False(t, h.RevenueMoMPct.Valid)
	assert.Nil(t, h.TopRegion)
	assert.Nil(t, h.TopProduct)
}
