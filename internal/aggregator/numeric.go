package aggregator

import "github.com/shopspring/decimal"

// Places is the number of decimal places emitted values are rounded to.
const Places = 10

// epsilon is the magnitude below which values collapse to zero and ratio
// denominators count as zero.
var epsilon = decimal.New(1, -9)

// Clean rounds d to Places decimals and collapses residual noise to 0.
func Clean(d decimal.Decimal) decimal.Decimal {
	r := d.Round(Places)
	if r.Abs().LessThan(epsilon) {
		return decimal.Zero
	}
	return r
}

// IsZero reports whether |d| is below the noise threshold.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(epsilon)
}

// Value wraps a cleaned amount.
func Value(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(Clean(d))
}

// None is the absent value: rendered as an empty cell.
var None = decimal.NullDecimal{}

// Ratio divides num by den. A denominator within the noise threshold of
// zero yields None.
func Ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if IsZero(den) {
		return None
	}
	return Value(num.DivRound(den, Places+6))
}
