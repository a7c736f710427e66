package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qtyLots(qs ...int64) []Lot[int] {
	lots := make([]Lot[int], len(qs))
	for i, q := range qs {
		lots[i] = Lot[int]{Quantity: q, Payload: i}
	}
	return lots
}

func TestMatchFIFO_SplitsExitAcrossEntries(t *testing.T) {
	alloc := MatchFIFO(qtyLots(10, 10), qtyLots(15))

	require.Len(t, alloc.Entries, 2)
	assert.Equal(t, int64(10), alloc.Entries[0].Matched)
	assert.Equal(t, int64(0), alloc.Entries[0].Open)
	assert.Equal(t, []Fill[int]{{Exit: 0, Quantity: 10}}, alloc.Entries[0].Fills)

	assert.Equal(t, int64(5), alloc.Entries[1].Matched)
	assert.Equal(t, int64(5), alloc.Entries[1].Open)
	assert.Equal(t, []Fill[int]{{Exit: 0, Quantity: 5}}, alloc.Entries[1].Fills)

	assert.Zero(t, alloc.UnmatchedExitQty)
}

func TestMatchFIFO_EntryConsumesSeveralExits(t *testing.T) {
	alloc := MatchFIFO(qtyLots(12), qtyLots(4, 4, 10))

	require.Len(t, alloc.Entries, 1)
	assert.Equal(t, []Fill[int]{{Exit: 0, Quantity: 4}, {Exit: 1, Quantity: 4}, {Exit: 2, Quantity: 4}}, alloc.Entries[0].Fills)
	assert.Equal(t, int64(6), alloc.UnmatchedExitQty)
}

func TestMatchFIFO_NoExits(t *testing.T) {
	alloc := MatchFIFO(qtyLots(10, 5), qtyLots())

	assert.Equal(t, int64(0), alloc.MatchedQty())
	assert.Equal(t, int64(15), alloc.OpenQty())
	for _, ea := range alloc.Entries {
		assert.Empty(t, ea.Fills)
	}
}

func TestMatchFIFO_OverExitReportsRemainder(t *testing.T) {
	alloc := MatchFIFO(qtyLots(10), qtyLots(8, 5))

	assert.Equal(t, int64(10), alloc.MatchedQty())
	assert.Equal(t, int64(0), alloc.OpenQty())
	assert.Equal(t, int64(3), alloc.UnmatchedExitQty)
}

func TestMatchFIFO_IgnoresNonPositiveQuantities(t *testing.T) {
	alloc := MatchFIFO(qtyLots(0, 10), qtyLots(-2, 0, 4))

	require.Len(t, alloc.Entries, 2)
	assert.Equal(t, int64(0), alloc.Entries[0].Matched)
	assert.Equal(t, int64(0), alloc.Entries[0].Open)
	assert.Equal(t, []Fill[int]{{Exit: 2, Quantity: 4}}, alloc.Entries[1].Fills)
	assert.Zero(t, alloc.UnmatchedExitQty)
}

func TestMatchFIFO_QuantityConservation(t *testing.T) {
	tests := []struct {
		name    string
		entries []int64
		exits   []int64
	}{
		{"single lot fully closed", []int64{10}, []int64{10}},
		{"pyramids partially closed", []int64{10, 10, 5}, []int64{7, 9}},
		{"over exit", []int64{5, 5}, []int64{4, 4, 4}},
		{"exits uneven", []int64{3, 8, 1}, []int64{1, 1, 9}},
		{"nothing exited", []int64{4, 4}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := MatchFIFO(qtyLots(tt.entries...), qtyLots(tt.exits...))

			var entryTotal, exitTotal int64
			for _, q := range tt.entries {
				entryTotal += q
			}
			for _, q := range tt.exits {
				exitTotal += q
			}

			assert.Equal(t, entryTotal, alloc.MatchedQty()+alloc.OpenQty())
			assert.LessOrEqual(t, alloc.MatchedQty(), exitTotal)
			assert.Equal(t, exitTotal, alloc.MatchedQty()+alloc.UnmatchedExitQty)
			for _, ea := range alloc.Entries {
				var filled int64
				for _, f := range ea.Fills {
					filled += f.Quantity
				}
				assert.Equal(t, ea.Matched, filled)
			}
		})
	}
}

func TestMatchFIFO_Deterministic(t *testing.T) {
	entries := qtyLots(10, 10, 5)
	exits := qtyLots(6, 6, 6)

	first := MatchFIFO(entries, exits)
	second := MatchFIFO(entries, exits)

	assert.Equal(t, first, second)
	assert.Equal(t, qtyLots(6, 6, 6), exits, "exit lots must not be modified")
}

func TestEntryAllocation_AvgFillPrice(t *testing.T) {
	entries := []Lot[string]{{Quantity: 10, Payload: "initial"}}
	exits := []Lot[string]{{Quantity: 4, Payload: "120"}, {Quantity: 6, Payload: "130"}}

	alloc := MatchFIFO(entries, exits)

	avg := alloc.Entries[0].AvgFillPrice(dec)
	assertDecimal(t, "126", avg)
}
