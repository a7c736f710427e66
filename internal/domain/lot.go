package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotInput is a raw entry or exit slot as typed or imported by the user.
// A nil *LotInput means the slot is empty. A non-nil slot with a
// non-positive price or quantity is present but invalid and is excluded
// from every calculation.
type LotInput struct {
	Price    decimal.Decimal
	Quantity int64
	Date     time.Time // zero if the user left it blank
}

// Valid reports whether the slot takes part in calculations.
func (l *LotInput) Valid() bool {
	return l != nil && l.Price.IsPositive() && l.Quantity > 0
}

func (l *LotInput) clone() *LotInput {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// EntryLot is an included entry: Initial, Pyramid1 or Pyramid2.
type EntryLot struct {
	Label    LotLabel
	Price    decimal.Decimal
	Quantity int64
	Date     time.Time
}

// Value returns price × quantity.
func (e EntryLot) Value() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(e.Quantity))
}

// ExitLot is an included exit. Slot is 1-based (Exit1..Exit3).
type ExitLot struct {
	Slot     int
	Price    decimal.Decimal
	Quantity int64
	Date     time.Time
	// DateDefaulted is set when the exit had no date and the trade date was used.
	DateDefaulted bool
}

// Value returns price × quantity.
func (x ExitLot) Value() decimal.Decimal {
	return x.Price.Mul(decimal.NewFromInt(x.Quantity))
}
