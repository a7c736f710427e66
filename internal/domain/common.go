package domain

import (
	"fmt"
	"strings"
)

// Direction represents the side a trade was opened on (BUY or SELL).
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Valid reports whether d is Buy or Sell.
func (d Direction) Valid() bool { return d == Buy || d == Sell }

// ParseDirection accepts "buy"/"long" and "sell"/"short" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG", "B":
		return Buy, nil
	case "SELL", "SHORT", "S":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// PositionStatus represents the status of a journal position.
type PositionStatus string

const (
	StatusOpen    PositionStatus = "open"
	StatusClosed  PositionStatus = "closed"
	StatusPartial PositionStatus = "partial"
)

// Valid reports whether s is one of the three position statuses.
func (s PositionStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed || s == StatusPartial
}

// ParsePositionStatus converts a stored or user-typed status to PositionStatus.
func ParsePositionStatus(s string) (PositionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	case "partial":
		return StatusPartial, nil
	default:
		return "", fmt.Errorf("unknown position status %q", s)
	}
}

// AccountingBasis selects which date attributes a P&L to a portfolio period.
type AccountingBasis string

const (
	// Cash attributes P&L to the month of the latest exit.
	Cash AccountingBasis = "cash"
	// Accrual attributes P&L to the month of the entry.
	Accrual AccountingBasis = "accrual"
)

// ParseAccountingBasis converts a config value to AccountingBasis.
func ParseAccountingBasis(s string) (AccountingBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return Cash, nil
	case "accrual":
		return Accrual, nil
	default:
		return "", fmt.Errorf("unknown accounting basis %q", s)
	}
}

// LotLabel identifies an entry slot. Slot order is chronological order.
type LotLabel int

const (
	Initial LotLabel = iota
	Pyramid1
	Pyramid2
)

func (l LotLabel) String() string {
	switch l {
	case Initial:
		return "Initial"
	case Pyramid1:
		return "Pyramid1"
	case Pyramid2:
		return "Pyramid2"
	default:
		return "Unknown"
	}
}
