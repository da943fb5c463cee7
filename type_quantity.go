package reserve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityDigits is the number of fractional digits of the tracked asset (1 satoshi).
const QuantityDigits = 8

// ErrInvalidAmount is returned when an amount cannot be turned into a positive Quantity.
var ErrInvalidAmount = errors.New("invalid amount")

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an exact amount of the tracked asset.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float64 | int | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a user supplied amount. The amount must be a finite,
// strictly positive number with at most QuantityDigits fractional digits.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if !v.IsPositive() {
		return Quantity{}, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, s)
	}
	if !v.Round(QuantityDigits).Equal(v) {
		return Quantity{}, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, s, QuantityDigits)
	}
	return Quantity{value: v}, nil
}

func (t Quantity) Equal(p Quantity) bool    { return t.value.Equal(p.value) }
func (t Quantity) Add(p Quantity) Quantity  { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity  { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) Neg() Quantity            { return Quantity{value: t.value.Neg()} }
func (t Quantity) IsPositive() bool         { return t.value.IsPositive() }
func (t Quantity) IsZero() bool             { return t.value.IsZero() }
func (t Quantity) Decimal() decimal.Decimal { return t.value }
func (q Quantity) String() string           { return q.value.String() }

// StringFixed formats the quantity with all QuantityDigits decimals, e.g. 0.50000000.
func (q Quantity) StringFixed() string { return q.value.StringFixed(QuantityDigits) }

// InexactFloat64 is only meant for charts.
func (q Quantity) InexactFloat64() float64 { return q.value.InexactFloat64() }

func (t Quantity) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}
func (t *Quantity) UnmarshalJSON(decimalBytes []byte) error {
	return t.value.UnmarshalJSON(decimalBytes)
}
