// =============================================================================
// Analyst Reporting Suite - Validation Engine
// =============================================================================
//
// This module inspects a cleaned fact table and reports data-quality
// problems as human-readable warnings. It never fails and never modifies the
// table: callers decide whether to print, log or embed the warnings.
//
// RULES (emitted in this order):
//   1. For each required field, in required-field order:
//      - "Missing required column: '<field>'" when the field is absent
//      - "Column '<field>' has >50% missing values" when its null ratio
//        is above the threshold
//   2. "Rows with unparseable dates: <n>" when date is present and has
//      null entries
//
// CUSTOMIZATION:
//   - ValidationOptions.RequiredFields changes the required set
//   - ValidationOptions.MissingThreshold changes the null-ratio limit
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Rule identifiers carried on every Issue.
const (
	RuleMissingColumn    = "missing_column"
	RuleMostlyMissing    = "mostly_missing"
	RuleUnparseableDates = "unparseable_dates"
)

// Issue is a single data-quality finding.
type Issue struct {
	// Rule is one of the Rule* identifiers.
	Rule string

	// Field is the canonical column the issue is about.
	Field string

	// Count is the number of affected rows. Zero for schema-level issues.
	Count int

	// Message is the warning text shown to users.
	Message string
}

// String returns the warning text.
func (i Issue) String() string {
	return i.Message
}

// ValidationResult is the outcome of validating one fact table.
type ValidationResult struct {
	// Issues are the findings in emission order.
	Issues []Issue

	// RowsValidated is the number of rows inspected.
	RowsValidated int
}

// Warnings returns the warning strings in emission order. Never nil.
func (r *ValidationResult) Warnings() []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.Message)
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// RequiredFields are checked in order.
	// Default: date, revenue
	RequiredFields []string

	// MissingThreshold is the null ratio above which a required field is
	// reported as mostly missing.
	// Default: 0.5
	MissingThreshold float64
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		RequiredFields:   []string{types.FieldDate, types.FieldRevenue},
		MissingThreshold: 0.5,
	}
}

// Validator checks fact tables.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate returns the warning list for a fact table using default options.
// The result is never nil.
func Validate(fact *types.FactTable) []string {
	return NewValidator().Check(fact).Warnings()
}

// Check runs every rule against the fact table.
func (v *Validator) Check(fact *types.FactTable) *ValidationResult {
	result := &ValidationResult{RowsValidated: fact.Len}

	// =========================================================================
	// REQUIRED FIELD VALIDATION
	// =========================================================================

	for _, field := range v.options.RequiredFields {
		if !fact.Has(field) {
			result.Issues = append(result.Issues, Issue{
				Rule:    RuleMissingColumn,
				Field:   field,
				Message: fmt.Sprintf("Missing required column: '%s'", field),
			})
			continue
		}

		if fact.Len == 0 {
			continue
		}
		missing := fact.NullCount(field)
		if float64(missing)/float64(fact.Len) > v.options.MissingThreshold {
			result.Issues = append(result.Issues, Issue{
				Rule:    RuleMostlyMissing,
				Field:   field,
				Count:   missing,
				Message: fmt.Sprintf("Column '%s' has >%d%% missing values", field, int(v.options.MissingThreshold*100)),
			})
		}
	}

	// =========================================================================
	// DATE QUALITY VALIDATION
	// =========================================================================

	if fact.Has(types.FieldDate) {
		if bad := fact.NullCount(types.FieldDate); bad > 0 {
			result.Issues = append(result.Issues, Issue{
				Rule:    RuleUnparseableDates,
				Field:   types.FieldDate,
				Count:   bad,
				Message: fmt.Sprintf("Rows with unparseable dates: %d", bad),
			})
		}
	}

	return result
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// FormatWarnings renders warnings as a bulleted block for console output.
func FormatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return "- (none)"
	}

	var sb strings.Builder
	for i, w := range warnings {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(w)
	}
	return sb.String()
}
