package accounting

import (
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// OpenRisk is the amount that would be lost on the still-open quantity if
// the current stop were hit. The current stop is the trailing stop once one
// is set, otherwise the stop-loss. Lots whose stop is already in profit add
// nothing, and without any stop there is nothing to measure.
func OpenRisk(dir domain.Direction, sl, tsl decimal.Decimal, entries []domain.EntryLot, exits []domain.ExitLot) decimal.Decimal {
	stop := sl
	if tsl.IsPositive() {
		stop = tsl
	}
	if !stop.IsPositive() {
		return decimal.Zero
	}

	alloc := MatchFIFO(priceLots(entries), exitPriceLots(exits))
	risk := decimal.Zero
	for _, ea := range alloc.Entries {
		if ea.Open <= 0 {
			continue
		}
		loss := signedMove(dir, stop, ea.Entry)
		if loss.IsPositive() {
			risk = risk.Add(loss.Mul(decimal.NewFromInt(ea.Open)))
		}
	}
	return risk
}

// OpenHeat is OpenRisk as a percentage of the portfolio size.
func OpenHeat(dir domain.Direction, sl, tsl decimal.Decimal, entries []domain.EntryLot, exits []domain.ExitLot, portfolioSize decimal.Decimal) float64 {
	return percentOf(OpenRisk(dir, sl, tsl, entries, exits), portfolioSize)
}
