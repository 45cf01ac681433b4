package entities

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Cents is an amount of money in hundredths of the currency unit
type Cents int64

// Units converts a whole currency amount to cents
func Units(units int64) Cents {
	return Cents(units * 100)
}

// Decimal returns the amount in currency units as a decimal
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount as units with two decimals, e.g. "1234.50"
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Times returns c × n, or ErrAmountOverflow when the product does not fit in Cents
func (c Cents) Times(n int64) (Cents, error) {
	return fromExact(decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(n)))
}

// Plus returns c + other, or ErrAmountOverflow when the sum does not fit in Cents
func (c Cents) Plus(other Cents) (Cents, error) {
	return fromExact(decimal.NewFromInt(int64(c)).Add(decimal.NewFromInt(int64(other))))
}

func fromExact(d decimal.Decimal) (Cents, error) {
	if d.GreaterThan(maxCents) || d.LessThan(minCents) {
		return 0, ErrAmountOverflow
	}
	return Cents(d.IntPart()), nil
}

// CentsFromDecimal rounds a currency amount to the nearest cent (half away from zero)
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}
