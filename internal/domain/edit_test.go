package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrade() Trade {
	return Trade{
		ID:        "t1",
		Name:      "ACME",
		Direction: Buy,
		Date:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Initial:   &LotInput{Price: decimal.NewFromInt(100), Quantity: 10},
		Pyramid1:  &LotInput{Price: decimal.NewFromInt(110), Quantity: 5},
		StopLoss:  decimal.NewFromInt(95),
		Exits: [MaxExits]*LotInput{
			{Price: decimal.NewFromInt(120), Quantity: 5},
		},
	}
}

func TestApplyEdit_TextFieldsSkipCascade(t *testing.T) {
	edits := []FieldEdit{
		SetName{Name: "ACME Corp"},
		SetSetup{Setup: "breakout"},
		SetNotes{Notes: "held through earnings"},
	}
	for _, edit := range edits {
		t.Run(string(edit.Field()), func(t *testing.T) {
			_, cascade, err := ApplyEdit(sampleTrade(), edit)
			require.NoError(t, err)
			assert.False(t, cascade)
		})
	}
}

func TestApplyEdit_NumericFieldsCascade(t *testing.T) {
	tests := []struct {
		name  string
		edit  FieldEdit
		check func(t *testing.T, got Trade)
	}{
		{
			name: "entry price",
			edit: SetEntryPrice{Price: decimal.NewFromInt(101)},
			check: func(t *testing.T, got Trade) {
				assert.True(t, got.Initial.Price.Equal(decimal.NewFromInt(101)))
				assert.Equal(t, int64(10), got.Initial.Quantity)
			},
		},
		{
			name: "new pyramid slot",
			edit: SetPyramidQty{Label: Pyramid2, Quantity: 7},
			check: func(t *testing.T, got Trade) {
				require.NotNil(t, got.Pyramid2)
				assert.Equal(t, int64(7), got.Pyramid2.Quantity)
				assert.False(t, got.Pyramid2.Valid())
			},
		},
		{
			name: "clear pyramid",
			edit: ClearPyramid{Label: Pyramid1},
			check: func(t *testing.T, got Trade) {
				assert.Nil(t, got.Pyramid1)
			},
		},
		{
			name: "exit date",
			edit: SetExitDate{Slot: 1, Date: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
			check: func(t *testing.T, got Trade) {
				assert.Equal(t, 9, got.Exits[0].Date.Day())
			},
		},
		{
			name: "third exit",
			edit: SetExitPrice{Slot: 3, Price: decimal.NewFromInt(130)},
			check: func(t *testing.T, got Trade) {
				require.NotNil(t, got.Exits[2])
				assert.True(t, got.Exits[2].Price.Equal(decimal.NewFromInt(130)))
			},
		},
		{
			name: "clear exit",
			edit: ClearExit{Slot: 1},
			check: func(t *testing.T, got Trade) {
				assert.Nil(t, got.Exits[0])
			},
		},
		{
			name: "direction",
			edit: SetDirection{Direction: Sell},
			check: func(t *testing.T, got Trade) {
				assert.Equal(t, Sell, got.Direction)
			},
		},
		{
			name: "status",
			edit: SetPositionStatus{Status: StatusClosed},
			check: func(t *testing.T, got Trade) {
				assert.Equal(t, StatusClosed, got.PositionStatus)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cascade, err := ApplyEdit(sampleTrade(), tt.edit)
			require.NoError(t, err)
			assert.True(t, cascade)
			tt.check(t, got)
		})
	}
}

func TestApplyEdit_DoesNotModifyInput(t *testing.T) {
	tr := sampleTrade()

	_, _, err := ApplyEdit(tr, SetExitQty{Slot: 1, Quantity: 9})
	require.NoError(t, err)
	_, _, err = ApplyEdit(tr, SetPyramidPrice{Label: Pyramid1, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	assert.Equal(t, sampleTrade(), tr)
}

func TestApplyEdit_InvalidSlot(t *testing.T) {
	tests := []struct {
		name string
		edit FieldEdit
	}{
		{"exit slot zero", SetExitQty{Slot: 0, Quantity: 1}},
		{"exit slot four", ClearExit{Slot: 4}},
		{"initial is not a pyramid", SetPyramidPrice{Label: Initial, Price: decimal.NewFromInt(1)}},
		{"unknown direction", SetDirection{Direction: "SHORT"}},
		{"empty direction", SetDirection{}},
		{"unknown status", SetPositionStatus{Status: "pending"}},
		{"status in wrong case", SetPositionStatus{Status: "Closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cascade, err := ApplyEdit(sampleTrade(), tt.edit)
			assert.Error(t, err)
			assert.False(t, cascade)
			assert.Equal(t, sampleTrade(), got)
		})
	}
}

func TestApplyEdit_EnumValues(t *testing.T) {
	for _, dir := range []Direction{Buy, Sell} {
		got, cascade, err := ApplyEdit(sampleTrade(), SetDirection{Direction: dir})
		assert.NoError(t, err)
		assert.True(t, cascade)
		assert.Equal(t, dir, got.Direction)
	}
	for _, status := range []PositionStatus{StatusOpen, StatusClosed, StatusPartial, ""} {
		got, cascade, err := ApplyEdit(sampleTrade(), SetPositionStatus{Status: status})
		assert.NoError(t, err)
		assert.True(t, cascade)
		assert.Equal(t, status, got.PositionStatus)
	}
}

func TestEditField(t *testing.T) {
	assert.Equal(t, FieldPyramid2Date, SetPyramidDate{Label: Pyramid2}.Field())
	assert.Equal(t, FieldExit3Qty, SetExitQty{Slot: 3}.Field())
	assert.Equal(t, FieldID(""), SetExitQty{Slot: 5}.Field())
	assert.Equal(t, FieldBuySell, SetDirection{}.Field())
}
