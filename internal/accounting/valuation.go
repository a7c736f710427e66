package accounting

import (
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Valuation holds the quantity and price aggregates of a trade.
type Valuation struct {
	AvgEntry       decimal.Decimal
	AvgExitPrice   decimal.Decimal
	TotalQty       int64
	ExitedQty      int64
	OpenQty        int64
	PositionSize   decimal.Decimal
	RealizedPL     decimal.Decimal
	RealisedAmount decimal.Decimal
	UnrealizedPL   decimal.Decimal
	// OverExitQty is the part of ExitedQty that no entry could absorb.
	OverExitQty int64
}

// Value computes the valuation of a trade from its included lots.
func Value(dir domain.Direction, entries []domain.EntryLot, exits []domain.ExitLot, cmp decimal.Decimal) Valuation {
	v := Valuation{
		TotalQty:  totalEntryQty(entries),
		ExitedQty: totalExitQty(exits),
	}
	v.OpenQty = max(v.TotalQty-v.ExitedQty, 0)
	v.AvgEntry = AvgEntryPrice(entries)
	v.AvgExitPrice = AvgExitPrice(exits)
	v.PositionSize = PositionSize(entries)
	v.RealisedAmount = RealisedAmount(exits)

	alloc := MatchFIFO(priceLots(entries), exitPriceLots(exits))
	v.OverExitQty = alloc.UnmatchedExitQty
	v.RealizedPL = realizedFromAllocation(dir, alloc)
	v.UnrealizedPL = unrealizedFromAllocation(dir, alloc, cmp)
	return v
}

// AvgEntryPrice is the quantity-weighted mean entry price.
func AvgEntryPrice(entries []domain.EntryLot) decimal.Decimal {
	qty := totalEntryQty(entries)
	if qty <= 0 {
		return decimal.Zero
	}
	return PositionSize(entries).Div(decimal.NewFromInt(qty))
}

// AvgExitPrice is the quantity-weighted mean exit price.
func AvgExitPrice(exits []domain.ExitLot) decimal.Decimal {
	qty := totalExitQty(exits)
	if qty <= 0 {
		return decimal.Zero
	}
	return RealisedAmount(exits).Div(decimal.NewFromInt(qty))
}

// PositionSize sums price × quantity over the entries. It is not derived
// from the average entry price so no rounding creeps in.
func PositionSize(entries []domain.EntryLot) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Value())
	}
	return total
}

// RealisedAmount sums price × quantity over the exits.
func RealisedAmount(exits []domain.ExitLot) decimal.Decimal {
	total := decimal.Zero
	for _, x := range exits {
		total = total.Add(x.Value())
	}
	return total
}

// RealizedPL matches exits to entries FIFO and sums the P&L of every
// matched slice. Exit quantity beyond the entries is left out and returned
// as the second value.
func RealizedPL(dir domain.Direction, entries []domain.EntryLot, exits []domain.ExitLot) (decimal.Decimal, int64) {
	alloc := MatchFIFO(priceLots(entries), exitPriceLots(exits))
	return realizedFromAllocation(dir, alloc), alloc.UnmatchedExitQty
}

// AllocationPct is the position size as a percentage of the portfolio.
func AllocationPct(positionSize, portfolioSize decimal.Decimal) float64 {
	return percentOf(positionSize, portfolioSize)
}

func realizedFromAllocation(dir domain.Direction, alloc Allocation[decimal.Decimal, decimal.Decimal]) decimal.Decimal {
	pl := decimal.Zero
	for _, ea := range alloc.Entries {
		for _, f := range ea.Fills {
			pl = pl.Add(signedMove(dir, ea.Entry, f.Exit).Mul(decimal.NewFromInt(f.Quantity)))
		}
	}
	return pl
}

func unrealizedFromAllocation(dir domain.Direction, alloc Allocation[decimal.Decimal, decimal.Decimal], cmp decimal.Decimal) decimal.Decimal {
	if !cmp.IsPositive() {
		return decimal.Zero
	}
	pl := decimal.Zero
	for _, ea := range alloc.Entries {
		if ea.Open > 0 {
			pl = pl.Add(signedMove(dir, ea.Entry, cmp).Mul(decimal.NewFromInt(ea.Open)))
		}
	}
	return pl
}

func priceLots(entries []domain.EntryLot) []Lot[decimal.Decimal] {
	lots := make([]Lot[decimal.Decimal], len(entries))
	for i, e := range entries {
		lots[i] = Lot[decimal.Decimal]{Quantity: e.Quantity, Payload: e.Price}
	}
	return lots
}

func exitPriceLots(exits []domain.ExitLot) []Lot[decimal.Decimal] {
	lots := make([]Lot[decimal.Decimal], len(exits))
	for i, x := range exits {
		lots[i] = Lot[decimal.Decimal]{Quantity: x.Quantity, Payload: x.Price}
	}
	return lots
}

// signedMove is the per-share gain of moving from `from` to `to`:
// to−from for a long, from−to for a short.
func signedMove(dir domain.Direction, from, to decimal.Decimal) decimal.Decimal {
	if dir == domain.Sell {
		return from.Sub(to)
	}
	return to.Sub(from)
}

// percentOf returns amount/base×100, or 0 when base is not positive.
func percentOf(amount, base decimal.Decimal) float64 {
	if !base.IsPositive() {
		return 0
	}
	return amount.Div(base).Mul(hundred).InexactFloat64()
}
