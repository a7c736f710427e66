package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/domain"
)

var configKeys = []string{
	"DB_PATH", "LOG_LEVEL", "LOG_PRETTY", "ACCOUNTING_BASIS", "PORTFOLIO_SIZES_FILE",
	"DEFAULT_PORTFOLIO_SIZE", "IMPORT_CHUNK_SIZE", "QUOTE_SOURCE", "BINANCE_API_KEY",
	"BINANCE_API_SECRET", "IS_TESTNET", "QUOTE_SYMBOL_SUFFIX", "TRACING_ENABLED",
	"MAX_PORTFOLIO_HEAT", "MAX_OPEN_POSITIONS", "MAX_ALLOCATION_PCT", "MAX_POSITION_HEAT",
	"MAX_IMPACT_DRAWDOWN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data/journal.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, domain.Accrual, cfg.AccountingBasis)
	assert.True(t, cfg.DefaultPortfolioSize.Equal(decimal.NewFromInt(1000000)))
	assert.Equal(t, 50, cfg.ImportChunkSize)
	assert.Equal(t, QuoteSourceNone, cfg.QuoteSource)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/j.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("ACCOUNTING_BASIS", "Cash")
	t.Setenv("PORTFOLIO_SIZES_FILE", "sizes.yaml")
	t.Setenv("DEFAULT_PORTFOLIO_SIZE", "250000.50")
	t.Setenv("IMPORT_CHUNK_SIZE", "25")
	t.Setenv("QUOTE_SOURCE", "Binance")
	t.Setenv("QUOTE_SYMBOL_SUFFIX", "BUSD")
	t.Setenv("TRACING_ENABLED", "1")
	t.Setenv("MAX_PORTFOLIO_HEAT", "6")
	t.Setenv("MAX_OPEN_POSITIONS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/j.db", cfg.DBPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, domain.Cash, cfg.AccountingBasis)
	assert.Equal(t, "sizes.yaml", cfg.PortfolioSizesFile)
	assert.Equal(t, "250000.5", cfg.DefaultPortfolioSize.String())
	assert.Equal(t, 25, cfg.ImportChunkSize)
	assert.Equal(t, QuoteSourceBinance, cfg.QuoteSource)
	assert.Equal(t, "BUSD", cfg.QuoteSymbolSuffix)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 6.0, cfg.MaxPortfolioHeat)
	assert.Equal(t, 8, cfg.MaxOpenPositions)
	assert.Zero(t, cfg.MaxAllocationPct)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCOUNTING_BASIS", "mark-to-market")
	t.Setenv("DEFAULT_PORTFOLIO_SIZE", "-5")
	t.Setenv("IMPORT_CHUNK_SIZE", "lots")
	t.Setenv("QUOTE_SOURCE", "yahoo")
	t.Setenv("MAX_POSITION_HEAT", "-1")

	_, err := LoadConfig()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "ACCOUNTING_BASIS")
	assert.Contains(t, msg, "DEFAULT_PORTFOLIO_SIZE must be positive")
	assert.Contains(t, msg, "invalid IMPORT_CHUNK_SIZE")
	assert.Contains(t, msg, "QUOTE_SOURCE")
	assert.Contains(t, msg, "MAX_POSITION_HEAT cannot be negative")
}
