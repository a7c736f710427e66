package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/adapters/logger" // Import the logger package for LogLevel
	"tradeJournal/internal/domain"
)

// Quote sources accepted in QUOTE_SOURCE.
const (
	QuoteSourceNone    = "none"
	QuoteSourceBinance = "binance"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogPretty bool

	// Accounting
	AccountingBasis      domain.AccountingBasis
	PortfolioSizesFile   string          // optional YAML table of monthly sizes
	DefaultPortfolioSize decimal.Decimal // used for months the table does not cover
	ImportChunkSize      int

	// Quotes
	QuoteSource       string
	APIKey            string
	SecretKey         string
	IsTestnet         bool
	QuoteSymbolSuffix string

	// Risk limits, 0 disables a check
	MaxPortfolioHeat  float64
	MaxOpenPositions  int
	MaxAllocationPct  float64
	MaxPositionHeat   float64
	MaxImpactDrawdown float64

	// Tracing
	TracingEnabled bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", false)

	// Accounting
	cfg.AccountingBasis, err = domain.ParseAccountingBasis(getEnv("ACCOUNTING_BASIS", string(domain.Accrual)))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ACCOUNTING_BASIS: %v", err))
	}

	cfg.PortfolioSizesFile = getEnv("PORTFOLIO_SIZES_FILE", "")

	cfg.DefaultPortfolioSize, err = getEnvAsDecimalRequired("DEFAULT_PORTFOLIO_SIZE", decimal.NewFromInt(1000000))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DEFAULT_PORTFOLIO_SIZE: %v", err))
	} else if !cfg.DefaultPortfolioSize.IsPositive() {
		errs = append(errs, "DEFAULT_PORTFOLIO_SIZE must be positive")
	}

	cfg.ImportChunkSize, err = getEnvAsIntRequired("IMPORT_CHUNK_SIZE", 50)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid IMPORT_CHUNK_SIZE: %v", err))
	} else if cfg.ImportChunkSize <= 0 {
		errs = append(errs, "IMPORT_CHUNK_SIZE must be positive")
	}

	// Quotes
	cfg.QuoteSource = strings.ToLower(getEnv("QUOTE_SOURCE", QuoteSourceNone))
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.QuoteSymbolSuffix = getEnv("QUOTE_SYMBOL_SUFFIX", "USDT")

	switch cfg.QuoteSource {
	case QuoteSourceNone, QuoteSourceBinance:
	default:
		errs = append(errs, fmt.Sprintf("QUOTE_SOURCE must be %q or %q", QuoteSourceNone, QuoteSourceBinance))
	}

	// Risk limits
	for _, l := range []struct {
		key string
		dst *float64
	}{
		{"MAX_PORTFOLIO_HEAT", &cfg.MaxPortfolioHeat},
		{"MAX_ALLOCATION_PCT", &cfg.MaxAllocationPct},
		{"MAX_POSITION_HEAT", &cfg.MaxPositionHeat},
		{"MAX_IMPACT_DRAWDOWN", &cfg.MaxImpactDrawdown},
	} {
		*l.dst, err = getEnvAsFloatRequired(l.key, 0)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", l.key, err))
		} else if *l.dst < 0 {
			errs = append(errs, l.key+" cannot be negative")
		}
	}
	cfg.MaxOpenPositions, err = getEnvAsIntRequired("MAX_OPEN_POSITIONS", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_OPEN_POSITIONS: %v", err))
	} else if cfg.MaxOpenPositions < 0 {
		errs = append(errs, "MAX_OPEN_POSITIONS cannot be negative")
	}

	// Tracing
	cfg.TracingEnabled = getEnvAsBool("TRACING_ENABLED", false)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsDecimalRequired(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
