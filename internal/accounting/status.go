package accounting

import "tradeJournal/internal/domain"

// DeriveStatus applies the default status rule: nothing exited is open,
// everything (or more) exited is closed, anything else is partial.
func DeriveStatus(exitedQty, totalQty int64) domain.PositionStatus {
	switch {
	case exitedQty <= 0:
		return domain.StatusOpen
	case exitedQty >= totalQty:
		return domain.StatusClosed
	default:
		return domain.StatusPartial
	}
}
