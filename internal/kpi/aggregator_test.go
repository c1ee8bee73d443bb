package kpi

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/analyst-reporting/internal/cleaning"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/ginjaninja78/analyst-reporting/internal/validation"
)

func d(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func month(y int, m time.Month) types.NullTime {
	return types.TimeOf(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
}

func assertDecimal(t *testing.T, want string, got decimal.NullDecimal, msgAndArgs ...any) {
	t.Helper()
	require.True(t, got.Valid, msgAndArgs...)
	assert.True(t, decimal.RequireFromString(want).Equal(got.Decimal), "want %s got %s", want, got.Decimal)
}

// monthlyBatches builds the raw January and February extracts: January has
// 60 rows with revenue blanked on row 3 and an unparseable date on row 7,
// February has 55 clean rows.
func monthlyBatches() *types.Table {
	regions := []string{"NSW", "VIC", "QLD", "WA"}
	products := []string{"Widget A", "Widget B", "Widget C"}

	var dates, states, sales, cogs, qty, sku []any
	add := func(date any, i int, revenue any) {
		dates = append(dates, date)
		states = append(states, " "+regions[i%len(regions)]+" ")
		sales = append(sales, revenue)
		cogs = append(cogs, "40")
		qty = append(qty, "2")
		sku = append(sku, products[i%len(products)])
	}

	for i := 0; i < 60; i++ {
		var date any = fmt.Sprintf("2025-01-%02d", i%28+1)
		var revenue any = fmt.Sprintf("%d", 100+i)
		if i == 2 {
			revenue = nil
		}
		if i == 6 {
			date = "not a date"
		}
		add(date, i, revenue)
	}
	for i := 0; i < 55; i++ {
		add(fmt.Sprintf("2025-02-%02d", i%28+1), i, fmt.Sprintf("%d", 200+i))
	}

	return &types.Table{Columns: []types.Column{
		{Name: "Transaction Date", Values: dates},
		{Name: " State ", Values: states},
		{Name: "Sales($)", Values: sales},
		{Name: "COGS", Values: cogs},
		{Name: "Qty", Values: qty},
		{Name: "SKU", Values: sku},
	}}
}

func TestBuild_RoundTripScenario(t *testing.T) {
	cleaner, err := cleaning.New(nil, cleaning.DefaultCoerceOptions())
	require.NoError(t, err)

	fact := cleaner.Clean(monthlyBatches())
	warnings := validation.Validate(fact)
	bundle := Build(fact)

	assert.Contains(t, warnings, "Rows with unparseable dates: 1")
	assertDecimal(t, "115", bundle.SummaryValue(types.FieldRowsLoaded))

	// Two calendar months sorted ascending, then the unparseable-date group.
	require.Len(t, bundle.Trends, 3)
	assert.Equal(t, month(2025, time.January), bundle.Trends[0].Month)
	assert.Equal(t, month(2025, time.February), bundle.Trends[1].Month)
	assert.False(t, bundle.Trends[2].Month.Valid)

	// January excludes the blank revenue (row 3) and the undated row 7.
	janRevenue := 0
	for i := 0; i < 60; i++ {
		if i != 2 && i != 6 {
			janRevenue += 100 + i
		}
	}
	febRevenue := 0
	for i := 0; i < 55; i++ {
		febRevenue += 200 + i
	}
	assertDecimal(t, fmt.Sprint(janRevenue), bundle.Trends[0].Revenue)
	assertDecimal(t, fmt.Sprint(febRevenue), bundle.Trends[1].Revenue)

	require.Len(t, bundle.Variance, 3)
	for _, m := range VarianceMetrics {
		assert.False(t, bundle.Variance[0].MoM[m].Abs.Valid, m)
		assert.False(t, bundle.Variance[0].MoM[m].Pct.Valid, m)
	}
	assertDecimal(t, fmt.Sprint(febRevenue-janRevenue), bundle.Variance[1].MoM[types.FieldRevenue].Abs)
	assert.True(t, bundle.Variance[1].MoM[types.FieldRevenue].Pct.Valid)

	// Grand total still includes the undated row.
	assertDecimal(t, fmt.Sprint(janRevenue+febRevenue+106), bundle.SummaryValue(types.FieldRevenue))

	// 4 regions x 2 months + the undated row's region group.
	assert.Len(t, bundle.DrilldownRegion, 9)
	assert.Len(t, bundle.DrilldownProduct, 7)
}

func TestBuild_MarginLaw(t *testing.T) {
	fact := &types.FactTable{
		Len:     5,
		Columns: []string{"date", "revenue", "cost"},
		Date: []types.NullTime{
			types.TimeOf(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)),
			types.TimeOf(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)),
			types.TimeOf(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
			types.TimeOf(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			types.TimeOf(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
		},
		Revenue: []decimal.NullDecimal{d("100"), d("300"), d("0"), d("50"), {}},
		Cost:    []decimal.NullDecimal{d("50"), d("100"), d("10"), {}, d("5")},
	}

	bundle := Build(fact)
	require.Len(t, bundle.Trends, 3)

	for _, r := range bundle.Trends {
		if r.Revenue.Valid && !r.Revenue.Decimal.IsZero() {
			require.True(t, r.Margin.Valid)
			assert.True(t, r.GrossProfit.Decimal.Div(r.Revenue.Decimal).Equal(r.Margin.Decimal))
		} else {
			assert.False(t, r.Margin.Valid)
		}
	}

	// January: margin of the sums, not the mean of row margins.
	assertDecimal(t, "0.625", bundle.Trends[0].Margin)
	// February: zero revenue.
	assert.False(t, bundle.Trends[1].Margin.Valid)
	assertDecimal(t, "-10", bundle.Trends[1].GrossProfit)
	// March: neither row has both revenue and cost, so no gross profit.
	assertDecimal(t, "0", bundle.Trends[2].GrossProfit)
	assertDecimal(t, "0", bundle.Trends[2].Margin)

	// Against a zero base the percentage change is null, never infinite.
	assert.False(t, bundle.Variance[2].MoM[types.FieldRevenue].Pct.Valid)
	assertDecimal(t, "50", bundle.Variance[2].MoM[types.FieldRevenue].Abs)

	// Summary margin uses grand totals.
	assertDecimal(t, "240", bundle.SummaryValue(types.FieldGrossProfit))
	assertDecimal(t, "450", bundle.SummaryValue(types.FieldRevenue))
	assert.True(t, decimal.NewFromInt(240).Div(decimal.NewFromInt(450)).Equal(bundle.SummaryValue(types.FieldMargin).Decimal))
}

func TestBuild_EmptyInput(t *testing.T) {
	bundle := Build(&types.FactTable{})

	require.Len(t, bundle.Summary, len(SummaryMetrics))
	for i, m := range SummaryMetrics {
		assert.Equal(t, m, bundle.Summary[i].Metric)
	}
	assertDecimal(t, "0", bundle.SummaryValue(types.FieldRevenue))
	assertDecimal(t, "0", bundle.SummaryValue(types.FieldRowsLoaded))
	assert.False(t, bundle.SummaryValue(types.FieldMargin).Valid)

	assert.Empty(t, bundle.Trends)
	assert.Empty(t, bundle.Variance)
	assert.Empty(t, bundle.DrilldownRegion)
	assert.Empty(t, bundle.DrilldownProduct)

	tables := bundle.Tables()
	require.Len(t, tables, 5)
	assert.Equal(t, []string{"month", "revenue", "cost", "gross_profit", "units", "margin"}, tables[1].Columns)
	assert.Contains(t, tables[2].Columns, "margin_mom_pct")
	assert.Equal(t, []string{"month", "region", "revenue", "gross_profit"}, tables[3].Columns)
	assert.Equal(t, []string{"month", "product", "revenue", "gross_profit"}, tables[4].Columns)

	assert.Equal(t, []string{
		"Missing required column: 'date'",
		"Missing required column: 'revenue'",
	}, validation.Validate(&types.FactTable{}))
}

func TestBuild_VarianceFirstRowIsNull(t *testing.T) {
	fact := &types.FactTable{
		Len:     2,
		Columns: []string{"date", "revenue"},
		Date: []types.NullTime{
			types.TimeOf(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
			types.TimeOf(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
		},
		Revenue: []decimal.NullDecimal{d("80"), d("100")},
	}

	v := Build(fact).Variance
	require.Len(t, v, 2)
	for _, m := range VarianceMetrics {
		assert.Equal(t, Delta{}, v[0].MoM[m], m)
	}
	assertDecimal(t, "20", v[1].MoM[types.FieldRevenue].Abs)
	assertDecimal(t, "0.25", v[1].MoM[types.FieldRevenue].Pct)
}

func TestBuild_DrilldownNullDimensionsSortLast(t *testing.T) {
	jan := types.TimeOf(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	fact := &types.FactTable{
		Len:     4,
		Columns: []string{"date", "revenue", "region"},
		Date:    []types.NullTime{jan, jan, jan, {}},
		Revenue: []decimal.NullDecimal{d("1"), d("2"), d("3"), d("4")},
		Region:  []types.NullString{{}, types.StringOf("WA"), types.StringOf("NSW"), types.StringOf("WA")},
	}

	rows := Build(fact).DrilldownRegion
	require.Len(t, rows, 4)
	assert.Equal(t, "NSW", rows[0].Dimension.String)
	assert.Equal(t, "WA", rows[1].Dimension.String)
	assert.False(t, rows[2].Dimension.Valid)
	assertDecimal(t, "1", rows[2].Revenue)
	assert.False(t, rows[3].Month.Valid)
	assert.Equal(t, "WA", rows[3].Dimension.String)

	// Without cost every gross profit is null, so the sums are zero.
	assertDecimal(t, "0", rows[0].GrossProfit)
}
