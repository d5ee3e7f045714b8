// =============================================================================
// P&L Workbook Generator - Fact Normalizer
// =============================================================================
//
// This module turns the raw CSV rows (header -> value maps) into typed fact
// records. It is the only place where input values are coerced.
//
// NORMALIZATION RULES:
//   - TIME_KEY (YYYYMM, possibly float-decoded as "202401.0") -> YEAR, MONTH
//   - VALUE -> decimal; unparsable or empty values become 0
//   - PRODUCT_KEY -> trimmed, trailing ".0" removed
//   - every categorical column is trimmed text
//
// =============================================================================

package facts

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

const (
	ColTimeKey      = "TIME_KEY"
	ColGroup        = "GROUP"
	ColSubGroup     = "SUB_GROUP"
	ColBU           = "BU"
	ColServiceGroup = "SERVICE_GROUP"
	ColProductKey   = "PRODUCT_KEY"
	ColProductName  = "PRODUCT_NAME"
	ColValue        = "VALUE"
)

// RequiredColumns must all be present in the extract header. Extra columns
// are ignored.
var RequiredColumns = []string{
	ColTimeKey, ColGroup, ColSubGroup, ColBU,
	ColServiceGroup, ColProductKey, ColProductName, ColValue,
}

// =============================================================================
// NORMALIZER
// =============================================================================

// NormalizeOptions controls the normalizer.
type NormalizeOptions struct {
	// Month keeps only records of this period (YYYYMM). Empty keeps all.
	Month string
}

// NormalizeStats reports what the normalizer had to coerce.
type NormalizeStats struct {
	// Rows is the number of input rows.
	Rows int

	// Kept is the number of records returned (after the month filter).
	Kept int

	// InvalidValues counts VALUE cells that could not be parsed and became 0.
	InvalidValues int

	// InvalidTimeKeys counts TIME_KEY cells that could not be parsed.
	InvalidTimeKeys int

	// OutsideMonth counts records dropped by the month filter.
	OutsideMonth int
}

// Normalize converts raw rows to fact records.
//
// PARAMETERS:
//   - rows: The parsed CSV rows, keyed by header.
//   - opts: Normalization options.
//
// RETURNS:
//   - The fact records in input order.
//   - Statistics about coerced values.
func Normalize(rows []map[string]string, opts NormalizeOptions) ([]types.Fact, NormalizeStats) {
	stats := NormalizeStats{Rows: len(rows)}
	out := make([]types.Fact, 0, len(rows))

	for _, row := range rows {
		year, month, ok := ParseTimeKey(row[ColTimeKey])
		if !ok {
			stats.InvalidTimeKeys++
		}

		value, ok := ParseValue(row[ColValue])
		if !ok {
			stats.InvalidValues++
		}

		fact := types.Fact{
			Group:        clean(row[ColGroup]),
			SubGroup:     clean(row[ColSubGroup]),
			BU:           clean(row[ColBU]),
			ServiceGroup: clean(row[ColServiceGroup]),
			ProductKey:   CanonicalProductKey(row[ColProductKey]),
			ProductName:  clean(row[ColProductName]),
			Year:         year,
			Month:        month,
			Value:        value,
		}

		if opts.Month != "" && fact.Period() != opts.Month {
			stats.OutsideMonth++
			continue
		}
		out = append(out, fact)
	}

	stats.Kept = len(out)
	return out, stats
}

// ParseTimeKey splits a YYYYMM time key. Float-decoded keys ("202401.0")
// are accepted.
func ParseTimeKey(raw string) (year, month int, ok bool) {
	s := strings.TrimSuffix(clean(raw), ".0")
	if len(s) < 6 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

// ParseValue parses a VALUE cell. Thousands separators are tolerated.
// Anything else that does not parse yields zero and ok=false; an empty
// cell is zero and ok=true.
func ParseValue(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(clean(raw), ",", "")
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CanonicalProductKey trims a product key and strips the ".0" suffix left
// behind when an integer key was decoded as a float.
func CanonicalProductKey(raw string) string {
	return strings.TrimSuffix(clean(raw), ".0")
}

// clean trims surrounding whitespace, including the no-break space some
// extracts emit.
func clean(s string) string {
	return strings.TrimSpace(s)
}
