package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"tradeJournal/internal/accounting"
	"tradeJournal/internal/domain"
)

// JournalMetrics summarizes a set of recomputed journal trades.
type JournalMetrics struct {
	// Basic Metrics
	TotalTrades     int
	ClosedTrades    int
	OpenTrades      int // open and partial
	WinningTrades   int
	LosingTrades    int
	WinRate         float64
	TotalRealized   decimal.Decimal
	TotalUnrealized decimal.Decimal
	AverageWin      decimal.Decimal
	AverageLoss     decimal.Decimal
	ProfitFactor    float64
	Expectancy      decimal.Decimal

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageHoldingDays   float64
	CumulativeImpact     []ImpactPoint
	MaxImpactDrawdown    float64 // percentage points below the running peak
	PortfolioHeat        float64
	MonthlyRealized      map[string]decimal.Decimal // keyed "2006-01" by basis month
}

// ImpactPoint is one step of the cumulative portfolio impact curve.
type ImpactPoint struct {
	TradeID    string
	Date       time.Time
	Impact     float64
	Cumulative float64
}

// AnalyzeJournal calculates summary metrics from trades whose derived fields
// are current. Only closed trades count as wins or losses; a closed trade
// with no profit is a loss. The input slice is not reordered.
func AnalyzeJournal(trades []domain.Trade, basis domain.AccountingBasis) *JournalMetrics {
	m := &JournalMetrics{
		MonthlyRealized:  make(map[string]decimal.Decimal),
		CumulativeImpact: make([]ImpactPoint, 0),
	}
	if len(trades) == 0 {
		return m
	}

	sorted := make([]domain.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return accounting.ReferenceDate(sorted[i], basis).Before(accounting.ReferenceDate(sorted[j], basis))
	})

	var (
		grossWin, grossLoss, closedRealized decimal.Decimal
		consecutiveWins, consecutiveLosses  int
		holdingDays                         []float64
	)
	for _, t := range sorted {
		m.TotalTrades++
		m.TotalRealized = m.TotalRealized.Add(t.Derived.PLRs)
		m.TotalUnrealized = m.TotalUnrealized.Add(t.Derived.UnrealizedPL)

		if t.Derived.ExitedQty > 0 {
			key := accounting.ReferenceDate(t, basis).Format("2006-01")
			m.MonthlyRealized[key] = m.MonthlyRealized[key].Add(t.Derived.PLRs)
		}

		if t.PositionStatus != domain.StatusClosed {
			m.OpenTrades++
			continue
		}
		m.ClosedTrades++
		closedRealized = closedRealized.Add(t.Derived.PLRs)
		holdingDays = append(holdingDays, float64(t.Derived.HoldingDays))

		if t.Derived.PLRs.IsPositive() {
			m.WinningTrades++
			grossWin = grossWin.Add(t.Derived.PLRs)
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			m.LosingTrades++
			grossLoss = grossLoss.Add(t.Derived.PLRs)
			consecutiveLosses++
			consecutiveWins = 0
		}
		m.MaxConsecutiveWins = max(m.MaxConsecutiveWins, consecutiveWins)
		m.MaxConsecutiveLosses = max(m.MaxConsecutiveLosses, consecutiveLosses)
	}

	m.CumulativeImpact = CumulativeImpact(sorted, basis)
	m.MaxImpactDrawdown = maxDrawdown(m.CumulativeImpact)
	m.PortfolioHeat = PortfolioHeat(sorted)

	if m.ClosedTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.ClosedTrades)
		m.Expectancy = closedRealized.Div(decimal.NewFromInt(int64(m.ClosedTrades)))
		m.AverageHoldingDays = stat.Mean(holdingDays, nil)
	}
	if m.WinningTrades > 0 {
		m.AverageWin = grossWin.Div(decimal.NewFromInt(int64(m.WinningTrades)))
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = grossLoss.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}
	if grossLoss.IsNegative() {
		m.ProfitFactor = grossWin.Div(grossLoss.Neg()).InexactFloat64()
	}

	return m
}

// CumulativeImpact is the running sum of portfolio impact over trades that
// are already in time order. Each point is dated by the basis reference date.
func CumulativeImpact(trades []domain.Trade, basis domain.AccountingBasis) []ImpactPoint {
	points := make([]ImpactPoint, 0, len(trades))
	running := 0.0
	for _, t := range trades {
		running += t.Derived.PFImpact
		points = append(points, ImpactPoint{
			TradeID:    t.ID,
			Date:       accounting.ReferenceDate(t, basis),
			Impact:     t.Derived.PFImpact,
			Cumulative: running,
		})
	}
	return points
}

// PortfolioHeat sums the open heat of every trade that is not closed.
func PortfolioHeat(trades []domain.Trade) float64 {
	heat := 0.0
	for _, t := range trades {
		if t.PositionStatus == domain.StatusClosed {
			continue
		}
		heat += t.Derived.OpenHeat
	}
	return heat
}

func maxDrawdown(points []ImpactPoint) float64 {
	peak, worst := 0.0, 0.0
	for _, p := range points {
		peak = max(peak, p.Cumulative)
		worst = max(worst, peak-p.Cumulative)
	}
	return worst
}

// GetMonthlyRealized returns the monthly realized P&L as a sorted slice
func (m *JournalMetrics) GetMonthlyRealized() []MonthlyRealized {
	out := make([]MonthlyRealized, 0, len(m.MonthlyRealized))
	for month, pl := range m.MonthlyRealized {
		date, _ := time.Parse("2006-01", month)
		out = append(out, MonthlyRealized{Month: date, PL: pl})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// MonthlyRealized is the realized P&L attributed to one month
type MonthlyRealized struct {
	Month time.Time
	PL    decimal.Decimal
}
