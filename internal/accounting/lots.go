package accounting

import (
	"tradeJournal/internal/domain"
)

var entryLabels = [...]domain.LotLabel{domain.Initial, domain.Pyramid1, domain.Pyramid2}

// GatherLots collects the valid entry and exit lots of a trade in slot order.
// Slots that are empty, or have a non-positive price or quantity, are
// dropped. The initial lot is dated by the trade date, as is any pyramid or
// exit without a date of its own; defaulted exits are flagged.
func GatherLots(t domain.Trade) ([]domain.EntryLot, []domain.ExitLot) {
	entries := make([]domain.EntryLot, 0, len(entryLabels))
	for _, label := range entryLabels {
		slot := t.EntrySlot(label)
		if !slot.Valid() {
			continue
		}
		date := slot.Date
		if label == domain.Initial || date.IsZero() {
			date = t.Date
		}
		entries = append(entries, domain.EntryLot{
			Label:    label,
			Price:    slot.Price,
			Quantity: slot.Quantity,
			Date:     date,
		})
	}

	exits := make([]domain.ExitLot, 0, domain.MaxExits)
	for i, slot := range t.Exits {
		if !slot.Valid() {
			continue
		}
		x := domain.ExitLot{
			Slot:     i + 1,
			Price:    slot.Price,
			Quantity: slot.Quantity,
			Date:     slot.Date,
		}
		if x.Date.IsZero() {
			x.Date = t.Date
			x.DateDefaulted = true
		}
		exits = append(exits, x)
	}
	return entries, exits
}

func totalEntryQty(entries []domain.EntryLot) int64 {
	var n int64
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

func totalExitQty(exits []domain.ExitLot) int64 {
	var n int64
	for _, x := range exits {
		n += x.Quantity
	}
	return n
}
