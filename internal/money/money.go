package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Amount is an exact decimal amount (rent, deposits, fees, costs).
// It persists as a BSON string so the Mongo driver never sees decimal's
// unexported fields, and marshals to JSON the way shopspring/decimal does.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{decimal.Zero}

// New creates an Amount from a decimal.
func New(d decimal.Decimal) Amount { return Amount{d} }

// FromString parses a decimal string ("12000.50") into an Amount.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// FromInt creates an Amount from an integer number of currency units.
func FromInt(v int64) Amount { return Amount{decimal.NewFromInt(v)} }

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.Decimal.IsZero() }

// MarshalBSONValue implements bson.ValueMarshaler.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(a.Decimal.String())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return fmt.Errorf("amount: unmarshal bson value: %w", err)
	}
	if s == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	a.Decimal = d
	return nil
}
