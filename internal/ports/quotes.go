package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteProvider fetches current market prices. Only the app layer calls it;
// the accounting engine receives the CMP as a trade field.
type QuoteProvider interface {
	// LastPrice returns the last traded price for a symbol.
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PortfolioSizeResolver returns the portfolio size for a calendar month.
// month is the English month name ("January"). Implementations must be
// safe for concurrent use and must not block.
type PortfolioSizeResolver func(month string, year int) decimal.Decimal
