package accounting

import (
	"github.com/shopspring/decimal"
)

// Lot is a quantity of shares carrying a payload. Entry lots and exit lots
// use different payloads depending on what the caller needs back: a price
// for P&L, a price and a date for holding days, a price and a stop for
// reward:risk.
type Lot[P any] struct {
	Quantity int64
	Payload  P
}

// Fill is the part of one exit lot matched against an entry lot.
type Fill[X any] struct {
	Exit     X
	Quantity int64
}

// EntryAllocation is the FIFO outcome for a single entry lot.
type EntryAllocation[E, X any] struct {
	Entry    E
	Quantity int64
	Fills    []Fill[X]
	Matched  int64
	Open     int64
}

// AvgFillPrice returns the value-weighted average price of the exits matched
// against this entry, or zero if nothing was matched.
func (a EntryAllocation[E, X]) AvgFillPrice(price func(X) decimal.Decimal) decimal.Decimal {
	if a.Matched <= 0 {
		return decimal.Zero
	}
	value := decimal.Zero
	for _, f := range a.Fills {
		value = value.Add(price(f.Exit).Mul(decimal.NewFromInt(f.Quantity)))
	}
	return value.Div(decimal.NewFromInt(a.Matched))
}

// Allocation is the FIFO outcome for one set of entries against one set of
// exits. UnmatchedExitQty is non-zero only when the exits exceed the entries.
type Allocation[E, X any] struct {
	Entries          []EntryAllocation[E, X]
	UnmatchedExitQty int64
}

// MatchedQty returns the total quantity matched across all entries.
func (a Allocation[E, X]) MatchedQty() int64 {
	var n int64
	for _, e := range a.Entries {
		n += e.Matched
	}
	return n
}

// OpenQty returns the total quantity left open across all entries.
func (a Allocation[E, X]) OpenQty() int64 {
	var n int64
	for _, e := range a.Entries {
		n += e.Open
	}
	return n
}

// MatchFIFO allocates exits to entries first-in-first-out in a single
// forward pass. Both slices must already be in slot order. Exits are read
// through an index cursor and never modified, so the same slice can be
// matched any number of times. An exit lot larger than the remaining need of
// an entry is split across entries. Lots with non-positive quantity take no
// part in matching.
func MatchFIFO[E, X any](entries []Lot[E], exits []Lot[X]) Allocation[E, X] {
	alloc := Allocation[E, X]{Entries: make([]EntryAllocation[E, X], 0, len(entries))}

	cur := 0       // exit lot at the head of the queue
	var used int64 // quantity of exits[cur] already consumed
	for _, e := range entries {
		qty := max(e.Quantity, 0)
		ea := EntryAllocation[E, X]{Entry: e.Payload, Quantity: qty}
		need := qty
		for need > 0 && cur < len(exits) {
			avail := exits[cur].Quantity - used
			if avail <= 0 {
				cur++
				used = 0
				continue
			}
			take := min(avail, need)
			ea.Fills = append(ea.Fills, Fill[X]{Exit: exits[cur].Payload, Quantity: take})
			need -= take
			used += take
			if used == exits[cur].Quantity {
				cur++
				used = 0
			}
		}
		ea.Matched = qty - need
		ea.Open = need
		alloc.Entries = append(alloc.Entries, ea)
	}

	for ; cur < len(exits); cur++ {
		if rest := exits[cur].Quantity - used; rest > 0 {
			alloc.UnmatchedExitQty += rest
		}
		used = 0
	}
	return alloc
}
