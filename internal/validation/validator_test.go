package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

func revenueColumn(values ...string) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(values))
	for i, v := range values {
		if v != "" {
			out[i] = decimal.NewNullDecimal(decimal.RequireFromString(v))
		}
	}
	return out
}

func TestValidate_MissingDateOnly(t *testing.T) {
	fact := &types.FactTable{
		Len:     2,
		Columns: []string{"revenue"},
		Revenue: revenueColumn("1", "2"),
	}

	assert.Equal(t, []string{"Missing required column: 'date'"}, Validate(fact))
}

func TestValidate_BothMissingInRequiredOrder(t *testing.T) {
	fact := &types.FactTable{Columns: []string{"region"}, Region: []types.NullString{}}

	assert.Equal(t, []string{
		"Missing required column: 'date'",
		"Missing required column: 'revenue'",
	}, Validate(fact))
}

func TestValidate_MostlyMissingAndUnparseableDates(t *testing.T) {
	fact := &types.FactTable{
		Len:     4,
		Columns: []string{"date", "revenue"},
		Date: []types.NullTime{
			{}, {}, {}, types.TimeOf(types.NullTime{}.Time),
		},
		Revenue: revenueColumn("1", "", "", "4"),
	}

	got := Validate(fact)
	assert.Equal(t, []string{
		"Column 'date' has >50% missing values",
		"Rows with unparseable dates: 3",
	}, got, "exactly half missing revenue is not above the threshold")
}

func TestValidate_CleanTable(t *testing.T) {
	fact := &types.FactTable{
		Len:     1,
		Columns: []string{"date", "revenue"},
		Date:    []types.NullTime{types.TimeOf(types.NullTime{}.Time)},
		Revenue: revenueColumn("10"),
	}

	got := Validate(fact)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestValidate_EmptyTableWithSchema(t *testing.T) {
	fact := &types.FactTable{
		Columns: []string{"date", "revenue"},
		Date:    []types.NullTime{},
		Revenue: []decimal.NullDecimal{},
	}
	assert.Empty(t, Validate(fact))
}

func TestCheck_IssueDetails(t *testing.T) {
	fact := &types.FactTable{
		Len:     2,
		Columns: []string{"date", "revenue"},
		Date:    []types.NullTime{{}, types.TimeOf(types.NullTime{}.Time)},
		Revenue: revenueColumn("1", "2"),
	}

	result := NewValidator().Check(fact)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, RuleUnparseableDates, result.Issues[0].Rule)
	assert.Equal(t, 1, result.Issues[0].Count)
	assert.Equal(t, 2, result.RowsValidated)
}

func TestCheck_CustomOptions(t *testing.T) {
	v := NewValidatorWithOptions(ValidationOptions{
		RequiredFields:   []string{"revenue", "cost"},
		MissingThreshold: 0.25,
	})
	fact := &types.FactTable{
		Len:     2,
		Columns: []string{"revenue"},
		Revenue: revenueColumn("1", ""),
	}

	assert.Equal(t, []string{
		"Column 'revenue' has >25% missing values",
		"Missing required column: 'cost'",
	}, v.Check(fact).Warnings())
}

func TestFormatWarnings(t *testing.T) {
	assert.Equal(t, "- (none)", FormatWarnings(nil))
	assert.Equal(t, "- a\n- b", FormatWarnings([]string{"a", "b"}))
}
