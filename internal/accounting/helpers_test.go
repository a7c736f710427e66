package accounting

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tradeJournal/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lot(price string, qty int64) *domain.LotInput {
	return &domain.LotInput{Price: dec(price), Quantity: qty}
}

func datedLot(price string, qty int64, date time.Time) *domain.LotInput {
	return &domain.LotInput{Price: dec(price), Quantity: qty, Date: date}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// sizes returns a resolver backed by a month-name → size map keyed "January 2024".
func sizes(m map[string]string) func(string, int) decimal.Decimal {
	return func(month string, year int) decimal.Decimal {
		v, ok := m[month+" "+strconv.Itoa(year)]
		if !ok {
			return decimal.Zero
		}
		return dec(v)
	}
}

func flatSize(v string) func(string, int) decimal.Decimal {
	return func(string, int) decimal.Decimal { return dec(v) }
}
