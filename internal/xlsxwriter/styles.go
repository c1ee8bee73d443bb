package xlsxwriter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// =============================================================================
// NUMBER FORMATS
// =============================================================================

// Number format codes.
const (
	PercentFormat = "0.00%"
	IntFormat     = "#,##0"
	DateFormat    = "yyyy-mm-dd"
	MonthFormat   = "yyyy-mm"
)

// HeaderFill is the header row background.
const HeaderFill = "D9E1F2"

// Variance colour scale, low to high.
const (
	ScaleLowColor  = "F8696B"
	ScaleMidColor  = "FFEB84"
	ScaleHighColor = "63BE7B"
)

// CurrencyFormat shows the currency code as a text prefix, e.g.
// "AUD " #,##0.00. No conversion is implied.
func CurrencyFormat(code string) string {
	return fmt.Sprintf(`"%s " #,##0.00`, currencyLabel(code))
}

// currencyLabel upper-cases code, defaulting to AUD.
func currencyLabel(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "AUD"
	}
	return code
}

// formatKind names a number format independent of currency.
type formatKind int

const (
	formatNone formatKind = iota
	formatPercent
	formatInt
	formatCurrency
	formatDate
	formatMonth
)

// columnFormat picks the number format for a column by its header.
//
// RULES (first match wins):
//   month                      -> yyyy-mm
//   date, *date*               -> yyyy-mm-dd
//   *margin*, *_pct            -> 0.00%
//   units, rows_loaded, *_count -> #,##0
//   revenue, cost, gross_profit and their *_mom_abs -> currency
//   <metric>_mom_abs           -> the metric's own format
func columnFormat(name string) formatKind {
	n := strings.ToLower(name)
	switch {
	case n == types.FieldMonth:
		return formatMonth
	case strings.Contains(n, "date"):
		return formatDate
	case strings.Contains(n, types.FieldMargin), strings.HasSuffix(n, "_pct"):
		return formatPercent
	case n == types.FieldUnits, n == types.FieldRowsLoaded, strings.HasSuffix(n, "_count"):
		return formatInt
	case n == types.FieldRevenue, n == types.FieldCost, n == types.FieldGrossProfit:
		return formatCurrency
	case strings.HasSuffix(n, "_mom_abs"):
		return columnFormat(strings.TrimSuffix(n, "_mom_abs"))
	}
	return formatNone
}

// =============================================================================
// STYLE SET
// =============================================================================

// styleSet holds the style IDs of one workbook.
type styleSet struct {
	header  int
	title   int
	heading int
	formats map[formatKind]int
}

// newStyleSet registers every style the workbooks use.
func newStyleSet(f *excelize.File, currencyCode string) (*styleSet, error) {
	s := &styleSet{formats: make(map[formatKind]int)}

	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	s.heading, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("failed to create heading style: %w", err)
	}

	codes := map[formatKind]string{
		formatPercent:  PercentFormat,
		formatInt:      IntFormat,
		formatCurrency: CurrencyFormat(currencyCode),
		formatDate:     DateFormat,
		formatMonth:    MonthFormat,
	}
	for kind, code := range codes {
		code := code
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
		if err != nil {
			return nil, fmt.Errorf("failed to create number format %q: %w", code, err)
		}
		s.formats[kind] = id
	}

	return s, nil
}

// format returns the style ID for a format kind, 0 for none.
func (s *styleSet) format(kind formatKind) int {
	return s.formats[kind]
}
