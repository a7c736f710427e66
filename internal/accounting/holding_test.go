package accounting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
)

var today = day(2024, 3, 31)

func TestHoldingPeriod_Open(t *testing.T) {
	tr := domain.Trade{
		Direction: domain.Buy,
		Date:      day(2024, 1, 1),
		Initial:   lot("100", 10),
	}
	entries, exits := GatherLots(tr)

	res := HoldingPeriod(domain.StatusOpen, entries, exits, today)

	assert.Equal(t, 90, res.Days)
	require.Len(t, res.Lots, 1)
	assert.Equal(t, 90, res.Lots[0].OpenDays)
	assert.Empty(t, res.Lots[0].ExitedDays)
}

func TestHoldingPeriod_Closed(t *testing.T) {
	tr := domain.Trade{
		Direction: domain.Buy,
		Date:      day(2024, 1, 1),
		Initial:   lot("100", 10),
		Exits: [3]*domain.LotInput{
			datedLot("110", 5, day(2024, 1, 11)),
			datedLot("115", 5, day(2024, 1, 21)),
		},
	}
	entries, exits := GatherLots(tr)

	res := HoldingPeriod(domain.StatusClosed, entries, exits, today)

	assert.Equal(t, []int{10, 20}, res.Lots[0].ExitedDays)
	assert.InDelta(t, 15.0, res.ExitedDays, 1e-9)
	assert.Equal(t, 15, res.Days)
}

func TestHoldingPeriod_PartialPrefersOpenLots(t *testing.T) {
	tr := domain.Trade{
		Direction: domain.Buy,
		Date:      day(2024, 1, 1),
		Initial:   lot("100", 10),
		Pyramid1:  datedLot("110", 10, day(2024, 2, 1)),
		Exits:     [3]*domain.LotInput{datedLot("130", 15, day(2024, 3, 1))},
	}
	entries, exits := GatherLots(tr)

	res := HoldingPeriod(domain.StatusPartial, entries, exits, today)

	require.Len(t, res.Lots, 2)
	assert.Equal(t, []int{60}, res.Lots[0].ExitedDays)
	assert.Equal(t, []int{29}, res.Lots[1].ExitedDays)
	assert.Equal(t, 59, res.Lots[1].OpenDays)
	assert.InDelta(t, (60.0*10+29.0*5)/15, res.ExitedDays, 1e-9)
	assert.InDelta(t, 59.0, res.OpenDays, 1e-9)
	assert.Equal(t, 59, res.Days)
}

func TestHoldingPeriod_SameDayIsOneDay(t *testing.T) {
	tr := domain.Trade{
		Direction: domain.Buy,
		Date:      day(2024, 1, 1),
		Initial:   lot("100", 10),
		Exits:     [3]*domain.LotInput{datedLot("101", 10, day(2024, 1, 1))},
	}
	entries, exits := GatherLots(tr)

	res := HoldingPeriod(domain.StatusClosed, entries, exits, today)

	assert.Equal(t, 1, res.Days)
}

func TestHoldingPeriod_NoEntries(t *testing.T) {
	res := HoldingPeriod(domain.StatusOpen, nil, nil, today)
	assert.Zero(t, res.Days)
	assert.Empty(t, res.Lots)
}

func TestDaysHeld(t *testing.T) {
	start := day(2024, 1, 1)
	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", start, 1},
		{"before entry", start.Add(-48 * time.Hour), 1},
		{"one and a half days rounds up", start.Add(36 * time.Hour), 2},
		{"exact days", day(2024, 1, 8), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysHeld(start, tt.to))
		})
	}
}
