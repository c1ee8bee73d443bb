// =============================================================================
// Analyst Reporting Suite - Type Coercer
// =============================================================================
//
// This module converts a normalized raw table into a typed FactTable.
//
// ORDER OF OPERATIONS (must not change):
//   1. Dates: calendar-string parsing, then spreadsheet-serial recovery for
//      numeric values inside the serial window, which overrides step 1 for
//      those rows only
//   2. Strings: every non-date column is trimmed and null markers are
//      replaced with null
//   3. Numerics: revenue, cost and units are parsed as decimals
//
// No value ever causes an error. A value that cannot be coerced becomes null
// and is reported later by the validator.
//
// CUSTOMIZATION:
//   - Extend dateLayouts to accept additional calendar formats
//   - Tune the serial window with serial_date_min / serial_date_max
//
// =============================================================================

package cleaning

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SerialEpoch is day zero of the spreadsheet serial calendar. It absorbs the
// 1900 leap-year bug for every serial after February 1900.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Default serial recovery window, inclusive. Roughly 1954 to 2064.
const (
	DefaultSerialMin = 20000
	DefaultSerialMax = 60000
)

// nullMarkers are compared case-insensitively after trimming.
var nullMarkers = []string{"", "nan", "none", "null"}

// dateLayouts are tried in order. Month-first wins over day-first when both
// would parse.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"2/1/2006",
	"1/2/06",
	"1-2-2006",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2006-01",
}

// =============================================================================
// COERCER
// =============================================================================

// CoerceOptions controls the date recovery heuristics.
type CoerceOptions struct {
	// SerialMin and SerialMax bound the inclusive day-count window that is
	// reinterpreted as a spreadsheet serial date. Serial-encoded dates
	// outside the window are not recovered.
	SerialMin float64
	SerialMax float64
}

// DefaultCoerceOptions returns the standard [20000, 60000] window.
func DefaultCoerceOptions() CoerceOptions {
	return CoerceOptions{SerialMin: DefaultSerialMin, SerialMax: DefaultSerialMax}
}

// Validate checks that the window is usable.
func (o CoerceOptions) Validate() error {
	if o.SerialMin < 0 || o.SerialMax < o.SerialMin {
		return fmt.Errorf("invalid serial date window [%v, %v]", o.SerialMin, o.SerialMax)
	}
	return nil
}

// Coercer builds typed fact tables.
type Coercer struct {
	opts CoerceOptions
}

// NewCoercer creates a Coercer.
func NewCoercer(opts CoerceOptions) (*Coercer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Coercer{opts: opts}, nil
}

// Coerce types every column of a normalized table.
//
// PARAMETERS:
//   - t: A table whose names are already canonical and unique.
//
// RETURNS:
//   - A new FactTable. The input is not modified.
func (c *Coercer) Coerce(t *types.Table) *types.FactTable {
	rows := t.RowCount()
	fact := &types.FactTable{
		Len:     rows,
		Columns: t.ColumnNames(),
		Text:    make(map[string][]types.NullString),
	}

	// STEP 1: dates first, before any string trimming touches them.
	if col, ok := t.Lookup(types.FieldDate); ok {
		fact.Date = make([]types.NullTime, rows)
		for i, v := range col.Values {
			fact.Date[i] = c.coerceDate(v)
		}
	}

	for _, col := range t.Columns {
		if col.Name == types.FieldDate {
			continue
		}

		// STEP 2: strings.
		text := make([]types.NullString, rows)
		for i, v := range col.Values {
			text[i] = CoerceString(v)
		}

		// STEP 3: numerics, from the trimmed text.
		switch col.Name {
		case types.FieldRevenue, types.FieldCost, types.FieldUnits:
			nums := make([]decimal.NullDecimal, rows)
			for i, v := range col.Values {
				nums[i] = coerceDecimal(v, text[i])
			}
			switch col.Name {
			case types.FieldRevenue:
				fact.Revenue = nums
			case types.FieldCost:
				fact.Cost = nums
			default:
				fact.Units = nums
			}
		case types.FieldRegion:
			fact.Region = text
		case types.FieldProduct:
			fact.Product = text
		case types.FieldSourceFile:
			fact.SourceFile = text
		default:
			fact.Text[col.Name] = text
		}
	}

	return fact
}

// =============================================================================
// DATE COERCION
// =============================================================================

// coerceDate runs both date paths for one value.
func (c *Coercer) coerceDate(v any) types.NullTime {
	parsed := parseCalendar(v)

	if serial, ok := numericValue(v); ok {
		if serial >= c.opts.SerialMin && serial <= c.opts.SerialMax {
			return types.TimeOf(SerialToTime(serial))
		}
	}

	return parsed
}

// SerialToTime converts a spreadsheet serial day count to a UTC time.
// Fractional days carry the time of day.
func SerialToTime(serial float64) time.Time {
	days := math.Floor(serial)
	frac := serial - days
	t := SerialEpoch.AddDate(0, 0, int(days))
	return t.Add(time.Duration(math.Round(frac * float64(24*time.Hour))))
}

// parseCalendar handles the general path. Bare numbers are not calendar
// dates; only the serial path may claim them.
func parseCalendar(v any) types.NullTime {
	switch x := v.(type) {
	case time.Time:
		return types.TimeOf(x)
	case string:
		s := strings.TrimSpace(x)
		if isNullMarker(s) {
			return types.NullTime{}
		}
		if t, ok := ParseDate(s); ok {
			return types.TimeOf(t)
		}
	}
	return types.NullTime{}
}

// ParseDate tries every known calendar layout.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// numericValue extracts a number from a raw value, including numeric strings.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// =============================================================================
// STRING AND NUMERIC COERCION
// =============================================================================

// CoerceString renders a raw value as trimmed text, or null for nil values
// and null markers.
func CoerceString(v any) types.NullString {
	var s string
	switch x := v.(type) {
	case nil:
		return types.NullString{}
	case string:
		s = x
	case time.Time:
		s = x.Format("2006-01-02")
	case float64:
		if math.IsNaN(x) {
			return types.NullString{}
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		s = fmt.Sprint(x)
	}

	s = strings.TrimSpace(s)
	if isNullMarker(s) {
		return types.NullString{}
	}
	return types.StringOf(s)
}

// coerceDecimal parses one numeric cell. Native numbers are taken as is;
// text goes through the already trimmed, null-normalized string.
func coerceDecimal(raw any, text types.NullString) decimal.NullDecimal {
	switch x := raw.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(x))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x)))
	case decimal.Decimal:
		return decimal.NewNullDecimal(x)
	case time.Time, bool:
		return decimal.NullDecimal{}
	}

	return ParseDecimal(text)
}

// ParseDecimal parses normalized text as a decimal. Unparseable text is null.
func ParseDecimal(text types.NullString) decimal.NullDecimal {
	if !text.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(text.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func isNullMarker(s string) bool {
	for _, m := range nullMarkers {
		if strings.EqualFold(s, m) {
			return true
		}
	}
	return false
}
