package sqlite

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trade-journal-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTrade(id string, tradeDate time.Time) ports.StoredTrade {
	return ports.StoredTrade{
		Trade: domain.Trade{
			ID:        id,
			Name:      "INFY",
			Setup:     "pullback",
			Notes:     "first add on volume",
			Direction: domain.Buy,
			Date:      tradeDate,
			Initial:   &domain.LotInput{Price: decimal.RequireFromString("1450.55"), Quantity: 10},
			Pyramid1:  &domain.LotInput{Price: decimal.RequireFromString("1480"), Quantity: 5, Date: tradeDate.AddDate(0, 0, 3)},
			StopLoss:  decimal.RequireFromString("1400"),
			Exits: [domain.MaxExits]*domain.LotInput{
				nil,
				{Price: decimal.RequireFromString("1520.25"), Quantity: 8},
			},
			CMP:            decimal.RequireFromString("1500"),
			PositionStatus: domain.StatusPartial,
			Derived: domain.DerivedFields{
				AvgEntry:           decimal.RequireFromString("1460.3666"),
				TotalQty:           15,
				ExitedQty:          8,
				OpenQty:            7,
				RewardRisk:         1.75,
				TraditionalRR:      math.Inf(1),
				HasRiskFree:        true,
				HoldingDays:        12,
				PLRs:               decimal.RequireFromString("557.6"),
				PFImpact:           0.56,
				LowConfidenceExits: []int{2},
			},
		},
		Overrides: domain.NewFieldSet(domain.FieldPositionStatus),
	}
}

func TestRepository_SaveAndFindByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	want := sampleTrade("t-1", date(2024, 1, 2))
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.FindByID(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	gt := got.Trade
	assert.Equal(t, "INFY", gt.Name)
	assert.Equal(t, "pullback", gt.Setup)
	assert.Equal(t, domain.Buy, gt.Direction)
	assert.True(t, want.Trade.Date.Equal(gt.Date))
	assert.Equal(t, domain.StatusPartial, gt.PositionStatus)

	require.NotNil(t, gt.Initial)
	assert.True(t, gt.Initial.Price.Equal(decimal.RequireFromString("1450.55")))
	assert.True(t, gt.Initial.Date.IsZero())
	require.NotNil(t, gt.Pyramid1)
	assert.True(t, gt.Pyramid1.Date.Equal(date(2024, 1, 5)))
	assert.Nil(t, gt.Pyramid2)

	assert.Nil(t, gt.Exits[0])
	require.NotNil(t, gt.Exits[1])
	assert.Equal(t, int64(8), gt.Exits[1].Quantity)
	assert.Nil(t, gt.Exits[2])

	assert.True(t, got.Overrides.Has(domain.FieldPositionStatus))
	assert.Equal(t, 1, got.Overrides.Len())
}

func TestRepository_DerivedFieldsRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleTrade("t-1", date(2024, 1, 2))))

	got, err := repo.FindByID(ctx, "t-1")
	require.NoError(t, err)
	d := got.Trade.Derived

	assert.True(t, d.AvgEntry.Equal(decimal.RequireFromString("1460.3666")))
	assert.True(t, d.PLRs.Equal(decimal.RequireFromString("557.6")))
	assert.Equal(t, int64(7), d.OpenQty)
	assert.Equal(t, 1.75, d.RewardRisk)
	assert.True(t, math.IsInf(d.TraditionalRR, 1), "risk-free R:R survives storage")
	assert.True(t, d.HasRiskFree)
	assert.Equal(t, 12, d.HoldingDays)
	assert.Equal(t, []int{2}, d.LowConfidenceExits)
}

func TestRepository_SaveReplaces(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	st := sampleTrade("t-1", date(2024, 1, 2))
	require.NoError(t, repo.Save(ctx, st))

	st.Trade.Notes = "trimmed into strength"
	st.Trade.Pyramid1 = nil
	st.Overrides = domain.FieldSet{}
	require.NoError(t, repo.Save(ctx, st))

	got, err := repo.FindByID(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "trimmed into strength", got.Trade.Notes)
	assert.Nil(t, got.Trade.Pyramid1)
	assert.Zero(t, got.Overrides.Len())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_SaveRequiresID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Save(context.Background(), sampleTrade("", date(2024, 1, 2)))
	assert.True(t, errors.Is(err, ports.ErrInvalidTrade))
}

func TestRepository_SaveBatchAndFindAll(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	batch := []ports.StoredTrade{
		sampleTrade("c", date(2024, 3, 1)),
		sampleTrade("a", date(2024, 1, 1)),
		sampleTrade("b", date(2024, 2, 1)),
	}
	require.NoError(t, repo.SaveBatch(ctx, batch))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Trade.ID)
	assert.Equal(t, "b", all[1].Trade.ID)
	assert.Equal(t, "c", all[2].Trade.ID)
}

func TestRepository_SaveBatchIsAtomic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	batch := []ports.StoredTrade{
		sampleTrade("ok", date(2024, 1, 1)),
		sampleTrade("", date(2024, 1, 2)),
	}
	assert.Error(t, repo.SaveBatch(ctx, batch))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		seed    bool
		wantErr error
	}{
		{name: "existing trade", seed: true},
		{name: "missing trade", seed: false, wantErr: ports.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()
			ctx := context.Background()

			if tt.seed {
				require.NoError(t, repo.Save(ctx, sampleTrade("t-1", date(2024, 1, 2))))
			}

			err := repo.Delete(ctx, "t-1")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)

			got, err := repo.FindByID(ctx, "t-1")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRepository_ManyTrades(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	batch := make([]ports.StoredTrade, 0, 120)
	for i := 0; i < 120; i++ {
		batch = append(batch, sampleTrade(fmt.Sprintf("t-%03d", i), date(2024, 1, 1).AddDate(0, 0, i)))
	}
	require.NoError(t, repo.SaveBatch(ctx, batch))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 120)
	assert.Equal(t, "t-119", all[119].Trade.ID)
}
