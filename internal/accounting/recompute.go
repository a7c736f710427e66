package accounting

import (
	"fmt"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// Context is everything Recompute reads besides the trade itself. It is
// built once by the caller and never modified here.
type Context struct {
	PortfolioSize ports.PortfolioSizeResolver
	Basis         domain.AccountingBasis
	// Overrides lists the fields the user set by hand.
	Overrides domain.FieldSet
	// Today anchors open holding periods. Zero means time.Now().
	Today time.Time
}

func (c Context) today() time.Time {
	if c.Today.IsZero() {
		return time.Now()
	}
	return c.Today
}

// OverExitError reports a trade whose exits exceed its entries. The excess
// is left out of P&L and holding-day matching.
type OverExitError struct {
	TradeID   string
	EntryQty  int64
	ExitQty   int64
	Unmatched int64
}

func (e *OverExitError) Error() string {
	return fmt.Sprintf("trade %s: exits of %d exceed entries of %d by %d", e.TradeID, e.ExitQty, e.EntryQty, e.Unmatched)
}

func (e *OverExitError) Unwrap() error { return ports.ErrOverExit }

// Recompute re-derives every derived field of t. It always returns a
// complete trade. The error is non-nil only when exits exceed entries, and
// is then an *OverExitError; the returned trade is still fully usable.
//
// The status used for reward:risk and holding days is the one the trade
// ends up with: the user's value when positionStatus is overridden,
// otherwise the value derived from the quantities. Running Recompute on its
// own output therefore changes nothing.
func Recompute(t domain.Trade, rc Context) (domain.Trade, error) {
	out := t.Clone()

	entries, exits := GatherLots(out)

	val := Value(out.Direction, entries, exits, out.CMP)

	status := DeriveStatus(val.ExitedQty, val.TotalQty)
	overridden := rc.Overrides.Has(domain.FieldPositionStatus) && out.PositionStatus != ""
	if overridden {
		status = out.PositionStatus
	}

	rr := RewardRisk(RewardRiskInput{
		Direction:    out.Direction,
		StopLoss:     out.StopLoss,
		TrailingStop: out.TrailingStop,
		CMP:          out.CMP,
		AvgExitPrice: val.AvgExitPrice,
		Status:       status,
	}, entries, exits)

	hp := HoldingPeriod(status, entries, exits, rc.today())

	entrySize := PortfolioSizeAt(rc.PortfolioSize, out.Date)
	impact := PortfolioImpact(out, val.RealizedPL, rc.Basis, rc.PortfolioSize)
	heat := 0.0
	if status != domain.StatusClosed {
		heat = OpenHeat(out.Direction, out.StopLoss, out.TrailingStop, entries, exits, entrySize)
	}

	d := domain.DerivedFields{
		AvgEntry:       val.AvgEntry,
		AvgExitPrice:   val.AvgExitPrice,
		TotalQty:       val.TotalQty,
		OpenQty:        val.OpenQty,
		ExitedQty:      val.ExitedQty,
		PositionSize:   val.PositionSize,
		AllocationPct:  AllocationPct(val.PositionSize, entrySize),
		RewardRisk:     rr.EffectiveRR,
		TraditionalRR:  rr.TraditionalRR,
		HasRiskFree:    rr.HasRiskFreeComponents,
		HoldingDays:    hp.Days,
		RealisedAmount: val.RealisedAmount,
		PLRs:           val.RealizedPL,
		UnrealizedPL:   val.UnrealizedPL,
		PFImpact:       impact,
		OpenHeat:       heat,
		OverExitQty:    val.OverExitQty,
	}
	for _, x := range exits {
		if x.DateDefaulted {
			d.LowConfidenceExits = append(d.LowConfidenceExits, x.Slot)
		}
	}

	if !overridden {
		out.PositionStatus = status
	}

	if out.CMP.IsPositive() && val.AvgEntry.IsPositive() {
		d.StockMovePct = percentOf(signedMove(out.Direction, val.AvgEntry, out.CMP), val.AvgEntry)
	}

	out.Derived = d

	if val.OverExitQty > 0 {
		return out, &OverExitError{
			TradeID:   out.ID,
			EntryQty:  val.TotalQty,
			ExitQty:   val.ExitedQty,
			Unmatched: val.OverExitQty,
		}
	}
	return out, nil
}
