package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tradeJournal/internal/domain"
)

func TestReferenceDate(t *testing.T) {
	tr := domain.Trade{
		Date: day(2024, 1, 10),
		Exits: [3]*domain.LotInput{
			datedLot("110", 2, day(2024, 3, 5)),
			lot("115", 2),
			datedLot("120", 2, day(2024, 2, 20)),
		},
	}

	assert.Equal(t, day(2024, 1, 10), ReferenceDate(tr, domain.Accrual))
	assert.Equal(t, day(2024, 3, 5), ReferenceDate(tr, domain.Cash))

	noExits := domain.Trade{Date: day(2024, 1, 10)}
	assert.Equal(t, day(2024, 1, 10), ReferenceDate(noExits, domain.Cash))
}

func TestPortfolioImpact_CashVsAccrual(t *testing.T) {
	tr := domain.Trade{
		Direction: domain.Buy,
		Date:      day(2024, 1, 10),
		Initial:   lot("100", 10),
		Exits:     [3]*domain.LotInput{datedLot("120", 10, day(2024, 3, 5))},
	}
	resolve := sizes(map[string]string{
		"January 2024": "100000",
		"March 2024":   "50000",
	})
	entries, exits := GatherLots(tr)
	pl, _ := RealizedPL(tr.Direction, entries, exits)

	accrual := PortfolioImpact(tr, pl, domain.Accrual, resolve)
	cash := PortfolioImpact(tr, pl, domain.Cash, resolve)

	assert.InDelta(t, 0.2, accrual, 1e-9)
	assert.InDelta(t, 0.4, cash, 1e-9)
	assert.NotEqual(t, accrual, cash)
}

func TestPortfolioImpact_DegradesToZero(t *testing.T) {
	tr := domain.Trade{Date: day(2024, 1, 10)}

	assert.Zero(t, PortfolioImpact(tr, dec("500"), domain.Accrual, nil))
	assert.Zero(t, PortfolioImpact(tr, dec("500"), domain.Accrual, flatSize("0")))
	assert.Zero(t, PortfolioImpact(tr, dec("500"), domain.Accrual, flatSize("-1000")))
}

func TestPortfolioSizeAt_PassesMonthName(t *testing.T) {
	var gotMonth string
	var gotYear int
	resolve := func(month string, year int) decimal.Decimal {
		gotMonth, gotYear = month, year
		return dec("1")
	}

	PortfolioSizeAt(resolve, day(2023, 11, 30))

	assert.Equal(t, "November", gotMonth)
	assert.Equal(t, 2023, gotYear)
}
