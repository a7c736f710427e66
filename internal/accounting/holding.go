package accounting

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"tradeJournal/internal/domain"
)

// LotHolding is the day count breakdown of one entry lot.
type LotHolding struct {
	Label      domain.LotLabel
	Quantity   int64
	MatchedQty int64
	OpenQty    int64
	// ExitedDays holds one day count per matched fill, in fill order.
	ExitedDays []int
	OpenDays   int // zero when nothing is open
}

// HoldingResult aggregates holding days across lots. OpenDays and ExitedDays
// are quantity-weighted means; Days is the value shown for the position.
type HoldingResult struct {
	Lots       []LotHolding
	OpenDays   float64
	ExitedDays float64
	Days       int
}

type datedPrice struct {
	label domain.LotLabel
	date  time.Time
}

// HoldingPeriod counts days held per lot under FIFO matching. A matched
// slice is held from its entry date to the matching exit date; an open slice
// from its entry date to today. Each count is rounded up to whole days and
// is at least 1.
func HoldingPeriod(status domain.PositionStatus, entries []domain.EntryLot, exits []domain.ExitLot, today time.Time) HoldingResult {
	var res HoldingResult
	if len(entries) == 0 {
		return res
	}

	entryLots := make([]Lot[datedPrice], len(entries))
	for i, e := range entries {
		entryLots[i] = Lot[datedPrice]{Quantity: e.Quantity, Payload: datedPrice{label: e.Label, date: e.Date}}
	}
	exitLots := make([]Lot[datedPrice], len(exits))
	for i, x := range exits {
		exitLots[i] = Lot[datedPrice]{Quantity: x.Quantity, Payload: datedPrice{date: x.Date}}
	}
	alloc := MatchFIFO(entryLots, exitLots)

	var openDays, openQty, exitedDays, exitedQty []float64
	for _, ea := range alloc.Entries {
		lh := LotHolding{
			Label:      ea.Entry.label,
			Quantity:   ea.Quantity,
			MatchedQty: ea.Matched,
			OpenQty:    ea.Open,
		}
		for _, f := range ea.Fills {
			d := DaysHeld(ea.Entry.date, f.Exit.date)
			lh.ExitedDays = append(lh.ExitedDays, d)
			exitedDays = append(exitedDays, float64(d))
			exitedQty = append(exitedQty, float64(f.Quantity))
		}
		if ea.Open > 0 {
			lh.OpenDays = DaysHeld(ea.Entry.date, today)
			openDays = append(openDays, float64(lh.OpenDays))
			openQty = append(openQty, float64(ea.Open))
		}
		res.Lots = append(res.Lots, lh)
	}

	if len(openDays) > 0 {
		res.OpenDays = stat.Mean(openDays, openQty)
	}
	if len(exitedDays) > 0 {
		res.ExitedDays = stat.Mean(exitedDays, exitedQty)
	}

	shown := res.ExitedDays
	switch status {
	case domain.StatusOpen, domain.StatusPartial:
		if len(openDays) > 0 {
			shown = res.OpenDays
		}
	case domain.StatusClosed:
		if len(exitedDays) == 0 {
			shown = res.OpenDays
		}
	}
	res.Days = int(math.Round(shown))
	return res
}

// DaysHeld returns the whole days from `from` to `to`, rounded up, at least 1.
func DaysHeld(from, to time.Time) int {
	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	return max(days, 1)
}
