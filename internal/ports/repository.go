package ports

import (
	"context"

	"tradeJournal/internal/domain"
)

// StoredTrade is a trade together with the fields the user has set by hand.
type StoredTrade struct {
	Trade     domain.Trade
	Overrides domain.FieldSet
}

// TradeRepository defines the interface for storing and retrieving journal trades.
type TradeRepository interface {
	// Save inserts or replaces a trade and its override set.
	Save(ctx context.Context, st StoredTrade) error
	// SaveBatch stores several trades in one transaction.
	SaveBatch(ctx context.Context, sts []StoredTrade) error
	// FindByID retrieves a trade by ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id string) (*StoredTrade, error)
	// FindAll retrieves all trades ordered by trade date ascending.
	FindAll(ctx context.Context) ([]StoredTrade, error)
	// Delete removes a trade. Deleting has no cascading effects.
	Delete(ctx context.Context, id string) error
}
