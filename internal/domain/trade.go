package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxExits is the number of exit slots a trade carries.
const MaxExits = 3

// Trade is a journal entry: the raw fields a user edits plus the fields
// derived from them. Derived is only ever written by the recalculation
// cascade.
type Trade struct {
	ID        string
	Name      string // ticker symbol
	Setup     string
	Notes     string
	Direction Direction
	Date      time.Time // initial entry date

	// Initial.Date is ignored; the initial lot is dated by Date.
	Initial  *LotInput
	Pyramid1 *LotInput
	Pyramid2 *LotInput

	StopLoss     decimal.Decimal
	TrailingStop decimal.Decimal

	Exits [MaxExits]*LotInput

	CMP            decimal.Decimal // current market price, 0 when unknown
	PositionStatus PositionStatus

	Derived DerivedFields
}

// EntrySlot returns the raw slot for an entry label.
func (t *Trade) EntrySlot(label LotLabel) *LotInput {
	switch label {
	case Initial:
		return t.Initial
	case Pyramid1:
		return t.Pyramid1
	case Pyramid2:
		return t.Pyramid2
	default:
		return nil
	}
}

// Clone returns a deep copy so lot slots can be edited without aliasing.
func (t Trade) Clone() Trade {
	c := t
	c.Initial = t.Initial.clone()
	c.Pyramid1 = t.Pyramid1.clone()
	c.Pyramid2 = t.Pyramid2.clone()
	for i := range t.Exits {
		c.Exits[i] = t.Exits[i].clone()
	}
	if t.Derived.LowConfidenceExits != nil {
		c.Derived.LowConfidenceExits = append([]int(nil), t.Derived.LowConfidenceExits...)
	}
	return c
}

// DerivedFields holds everything computed from the raw fields, the CMP and
// the portfolio size. Money is decimal; ratios and percentages are float64.
type DerivedFields struct {
	AvgEntry     decimal.Decimal
	AvgExitPrice decimal.Decimal
	TotalQty     int64
	OpenQty      int64
	ExitedQty    int64
	PositionSize decimal.Decimal

	AllocationPct float64
	StockMovePct  float64

	// RewardRisk is the effective position R:R; +Inf marks a risk-free position.
	RewardRisk    float64
	TraditionalRR float64
	HasRiskFree   bool

	HoldingDays int

	RealisedAmount decimal.Decimal
	PLRs           decimal.Decimal // FIFO realized P&L
	UnrealizedPL   decimal.Decimal
	PFImpact       float64
	OpenHeat       float64

	// OverExitQty is the exit quantity that could not be matched to any entry.
	OverExitQty int64
	// LowConfidenceExits lists exit slots (1-based) whose date was defaulted.
	LowConfidenceExits []int
}
