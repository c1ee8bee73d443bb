// =============================================================================
// Analyst Reporting Suite - Cleaning Stage
// =============================================================================
//
// Clean runs the schema normalizer and the type coercer back to back. It is
// a pure function of its input and the alias/serial configuration passed in
// at construction, so one Cleaner may be shared by concurrent runs.
//
// =============================================================================

package cleaning

import (
	"fmt"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// Cleaner is the normalize -> coerce stage.
type Cleaner struct {
	normalizer *Normalizer
	coercer    *Coercer
}

// New creates a Cleaner.
//
// PARAMETERS:
//   - aliases: Raw name -> canonical field. Nil or empty uses DefaultAliases().
//   - opts: Serial date window.
//
// RETURNS:
//   - An error for a malformed alias table or serial window. This is the
//     only failure the stage reports, and it happens before any row is read.
func New(aliases map[string]string, opts CoerceOptions) (*Cleaner, error) {
	normalizer, err := NewNormalizer(aliases)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema normalizer: %w", err)
	}
	coercer, err := NewCoercer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build type coercer: %w", err)
	}
	return &Cleaner{normalizer: normalizer, coercer: coercer}, nil
}

// Normalizer exposes the schema normalizer, e.g. for printing the
// effective alias table.
func (c *Cleaner) Normalizer() *Normalizer {
	return c.normalizer
}

// Clean normalizes and coerces a raw table.
func (c *Cleaner) Clean(raw *types.Table) *types.FactTable {
	return c.coercer.Coerce(c.normalizer.Normalize(raw))
}
