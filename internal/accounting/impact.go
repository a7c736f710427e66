package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// ReferenceDate picks the date whose month attributes the trade's P&L.
// Accrual uses the trade date. Cash uses the latest dated exit slot and
// falls back to the trade date when no exit carries a date.
func ReferenceDate(t domain.Trade, basis domain.AccountingBasis) time.Time {
	if basis != domain.Cash {
		return t.Date
	}
	var latest time.Time
	for _, x := range t.Exits {
		if x == nil || x.Date.IsZero() {
			continue
		}
		if x.Date.After(latest) {
			latest = x.Date
		}
	}
	if latest.IsZero() {
		return t.Date
	}
	return latest
}

// PortfolioSizeAt resolves the portfolio size for the month containing date.
// A nil resolver yields zero.
func PortfolioSizeAt(resolve ports.PortfolioSizeResolver, date time.Time) decimal.Decimal {
	if resolve == nil || date.IsZero() {
		return decimal.Zero
	}
	return resolve(date.Month().String(), date.Year())
}

// PortfolioImpact expresses pl as a percentage of the portfolio size in the
// month picked by the accounting basis. A missing or non-positive portfolio
// size gives 0.
func PortfolioImpact(t domain.Trade, pl decimal.Decimal, basis domain.AccountingBasis, resolve ports.PortfolioSizeResolver) float64 {
	size := PortfolioSizeAt(resolve, ReferenceDate(t, basis))
	return percentOf(pl, size)
}
