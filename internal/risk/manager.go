package risk

import (
	"context"
	"errors"
	"fmt"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
)

// ErrLimitBreached is wrapped by every limit violation.
var ErrLimitBreached = errors.New("risk limit breached")

// RiskConfig holds the journal's risk limits. A zero limit is not checked.
// Percentages are of the portfolio size, like the derived fields.
type RiskConfig struct {
	MaxPortfolioHeat  float64 // summed open heat of all non-closed trades
	MaxOpenPositions  int
	MaxAllocationPct  float64 // per trade
	MaxPositionHeat   float64 // per trade
	MaxImpactDrawdown float64 // percentage points below the cumulative impact peak
}

// RiskManager checks recomputed trades against the configured limits.
type RiskManager struct {
	config RiskConfig
}

// RiskStats is the exposure the limits are measured against.
type RiskStats struct {
	OpenPositions int
	PortfolioHeat float64
	ImpactDD      float64
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{config: config}
}

// Enabled reports whether any limit is set.
func (r *RiskManager) Enabled() bool {
	c := r.config
	return c.MaxPortfolioHeat > 0 || c.MaxOpenPositions > 0 || c.MaxAllocationPct > 0 ||
		c.MaxPositionHeat > 0 || c.MaxImpactDrawdown > 0
}

// ValidatePosition checks a single open or partial trade against the
// per-trade limits. Closed trades carry no risk and always pass.
func (r *RiskManager) ValidatePosition(ctx context.Context, t domain.Trade) error {
	if t.PositionStatus == domain.StatusClosed {
		return nil
	}
	var errs []error

	// Check allocation
	if r.config.MaxAllocationPct > 0 && t.Derived.AllocationPct > r.config.MaxAllocationPct {
		errs = append(errs, fmt.Errorf("%s: allocation %.2f%% exceeds maximum allowed %.2f%%: %w",
			t.Name, t.Derived.AllocationPct, r.config.MaxAllocationPct, ErrLimitBreached))
	}

	// Check open risk
	if r.config.MaxPositionHeat > 0 && t.Derived.OpenHeat > r.config.MaxPositionHeat {
		errs = append(errs, fmt.Errorf("%s: open heat %.2f%% exceeds maximum allowed %.2f%%: %w",
			t.Name, t.Derived.OpenHeat, r.config.MaxPositionHeat, ErrLimitBreached))
	}

	return errors.Join(errs...)
}

// GetStats measures the exposure of a set of trades.
func (r *RiskManager) GetStats(trades []domain.Trade, m *analytics.JournalMetrics) RiskStats {
	s := RiskStats{PortfolioHeat: analytics.PortfolioHeat(trades)}
	for _, t := range trades {
		if t.PositionStatus != domain.StatusClosed {
			s.OpenPositions++
		}
	}
	if m != nil {
		s.ImpactDD = m.MaxImpactDrawdown
	}
	return s
}

// CheckRiskLimits checks every trade and the journal as a whole. All
// breaches are returned joined; nil means every limit holds.
func (r *RiskManager) CheckRiskLimits(ctx context.Context, trades []domain.Trade, m *analytics.JournalMetrics) error {
	var errs []error
	for _, t := range trades {
		if err := r.ValidatePosition(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}

	stats := r.GetStats(trades, m)

	// Check portfolio heat
	if r.config.MaxPortfolioHeat > 0 && stats.PortfolioHeat > r.config.MaxPortfolioHeat {
		errs = append(errs, fmt.Errorf("portfolio heat %.2f%% exceeds maximum allowed %.2f%%: %w",
			stats.PortfolioHeat, r.config.MaxPortfolioHeat, ErrLimitBreached))
	}

	// Check number of open positions
	if r.config.MaxOpenPositions > 0 && stats.OpenPositions > r.config.MaxOpenPositions {
		errs = append(errs, fmt.Errorf("number of open positions %d exceeds maximum allowed %d: %w",
			stats.OpenPositions, r.config.MaxOpenPositions, ErrLimitBreached))
	}

	// Check drawdown limit
	if r.config.MaxImpactDrawdown > 0 && stats.ImpactDD > r.config.MaxImpactDrawdown {
		errs = append(errs, fmt.Errorf("impact drawdown %.2f exceeds maximum allowed %.2f: %w",
			stats.ImpactDD, r.config.MaxImpactDrawdown, ErrLimitBreached))
	}

	return errors.Join(errs...)
}

// Breaches splits the result of CheckRiskLimits into one message per breach.
func Breaches(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			out = append(out, Breaches(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
