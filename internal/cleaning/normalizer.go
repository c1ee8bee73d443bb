// =============================================================================
// Analyst Reporting Suite - Schema Normalizer
// =============================================================================
//
// This module maps arbitrary source column names onto the canonical schema.
//
// NORMALIZATION STEPS:
//   1. Canonicalize each raw name ("  Sales($) " -> "sales")
//   2. Rename canonicalized names found in the alias table
//   3. Merge columns that now share a name, first non-null value wins,
//      scanning the duplicates left to right in source column order
//
// The merge is order-dependent by contract: if a source reorders its
// columns, the winner for a row with two non-null candidates changes.
//
// CUSTOMIZATION:
//   - Supply an alias table in config.yaml (aliases:) to extend or replace
//     the built-in synonyms
//
// =============================================================================

package cleaning

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidAliasTable is returned when an alias table cannot be used.
var ErrInvalidAliasTable = errors.New("invalid alias table")

// nonAlnum matches every run of characters that are not letters or digits.
// Underscore is treated as a separator so runs like "__" collapse too.
var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// defaultAliases is the built-in synonym table, keyed by canonicalized name.
var defaultAliases = map[string][]string{
	types.FieldDate:    {"date", "month", "period", "transaction_date", "order_date"},
	types.FieldRevenue: {"revenue", "sales", "total_sales", "amount", "net_sales"},
	types.FieldCost:    {"cost", "cogs", "total_cost"},
	types.FieldUnits:   {"units", "qty", "quantity"},
	types.FieldRegion:  {"region", "state"},
	types.FieldProduct: {"product", "sku", "category"},
}

// DefaultAliases returns a fresh copy of the built-in alias table
// (raw name -> canonical field).
func DefaultAliases() map[string]string {
	out := make(map[string]string)
	for field, synonyms := range defaultAliases {
		for _, s := range synonyms {
			out[s] = field
		}
	}
	return out
}

// Canonicalize turns a raw column name into its snake_case form: trim,
// collapse every run of non-alphanumeric characters into one underscore,
// lowercase, strip leading and trailing underscores.
func Canonicalize(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	name = nonAlnum.ReplaceAllString(name, "_")
	return strings.Trim(strings.ToLower(name), "_")
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer renames and merges columns according to an alias table.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer builds a Normalizer from a raw-name -> canonical-field table.
//
// PARAMETERS:
//   - aliases: The alias table. Nil or empty selects DefaultAliases().
//
// RETURNS:
//   - The Normalizer.
//   - ErrInvalidAliasTable when a key or target is blank, or when two keys
//     canonicalize to the same name but point to different targets.
//
// Keys and targets are both canonicalized, so "Total Sales" -> "Revenue"
// behaves like "total_sales" -> "revenue".
func NewNormalizer(aliases map[string]string) (*Normalizer, error) {
	if len(aliases) == 0 {
		return &Normalizer{aliases: DefaultAliases()}, nil
	}

	// Sorted for a deterministic error message.
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := make(map[string]string, len(aliases))
	origin := make(map[string]string, len(aliases))
	for _, raw := range keys {
		key := Canonicalize(raw)
		target := Canonicalize(aliases[raw])
		if key == "" {
			return nil, fmt.Errorf("%w: alias key %q is blank after normalization", ErrInvalidAliasTable, raw)
		}
		if target == "" {
			return nil, fmt.Errorf("%w: alias %q has no target column", ErrInvalidAliasTable, raw)
		}
		if prev, ok := table[key]; ok && prev != target {
			return nil, fmt.Errorf("%w: aliases %q and %q both normalize to %q but map to %q and %q",
				ErrInvalidAliasTable, origin[key], raw, key, prev, target)
		}
		table[key] = target
		origin[key] = raw
	}

	return &Normalizer{aliases: table}, nil
}

// Aliases returns a copy of the effective alias table.
func (n *Normalizer) Aliases() map[string]string {
	out := make(map[string]string, len(n.aliases))
	for k, v := range n.aliases {
		out[k] = v
	}
	return out
}

// Resolve returns the output name for one raw column name.
func (n *Normalizer) Resolve(raw string) string {
	name := Canonicalize(raw)
	if target, ok := n.aliases[name]; ok {
		return target
	}
	return name
}

// Normalize returns a new table with canonical column names and no
// duplicate names. The input table is not modified.
//
// Merged columns keep the position of their first occurrence. A blank
// column name canonicalizes to "" and is kept as such; the CSV reader
// already names header gaps Column_N.
func (n *Normalizer) Normalize(t *types.Table) *types.Table {
	out := &types.Table{}
	rows := t.RowCount()
	position := make(map[string]int)

	for _, col := range t.Columns {
		name := n.Resolve(col.Name)

		idx, seen := position[name]
		if !seen {
			values := make([]any, rows)
			copy(values, col.Values)
			position[name] = len(out.Columns)
			out.Columns = append(out.Columns, types.Column{Name: name, Values: values})
			continue
		}

		// combine_first: later duplicates only fill gaps.
		merged := out.Columns[idx].Values
		for i := 0; i < rows && i < len(col.Values); i++ {
			if merged[i] == nil {
				merged[i] = col.Values[i]
			}
		}
	}

	return out
}
