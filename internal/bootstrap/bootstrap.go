// Package bootstrap wires configuration, adapters and the journal service
// for the command-line entry points.
package bootstrap

import (
	"context"
	"fmt"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/binanceclient"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/portfoliosize"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/risk"
	"tradeJournal/internal/trace"
)

// Env holds everything a command needs. Close must be called when done.
type Env struct {
	Config  *config.Config
	Logger  *logger.ZerologLogger
	Repo    *sqlite.Repository
	Sizes   *portfoliosize.Table
	Quotes  *binanceclient.Client // nil unless QUOTE_SOURCE=binance
	Service *app.JournalService
	Risk    *risk.RiskManager
}

// Setup builds an Env from cfg, in dependency order.
func Setup(cfg *config.Config) (*Env, error) {
	ctx := context.Background()
	env := &Env{Config: cfg}

	// 1. Initialize Logger
	env.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	env.Logger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 2. Initialize Tracing
	if err := trace.Init(trace.Config{Enabled: cfg.TracingEnabled}); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: env.Logger})
	if err != nil {
		env.Logger.Error(ctx, err, "Failed to initialize database repository")
		return nil, fmt.Errorf("failed to initialize database repository: %w", err)
	}
	env.Repo = repo
	env.Logger.Info(ctx, "Database repository initialized", map[string]interface{}{"path": cfg.DBPath})

	// 4. Load Portfolio Sizes
	env.Sizes, err = portfoliosize.Load(cfg.PortfolioSizesFile, cfg.DefaultPortfolioSize)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Logger.Info(ctx, "Portfolio sizes loaded", map[string]interface{}{
		"file":    cfg.PortfolioSizesFile,
		"months":  env.Sizes.Len(),
		"default": cfg.DefaultPortfolioSize.String(),
	})

	// 5. Initialize Quote Source (optional)
	var quotes ports.QuoteProvider
	if cfg.QuoteSource == config.QuoteSourceBinance {
		env.Quotes, err = binanceclient.New(binanceclient.Config{
			APIKey:       cfg.APIKey,
			SecretKey:    cfg.SecretKey,
			UseTestnet:   cfg.IsTestnet,
			Logger:       env.Logger,
			SymbolSuffix: cfg.QuoteSymbolSuffix,
		})
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to initialize Binance client: %w", err)
		}
		quotes = env.Quotes
	}

	// 6. Initialize Application Service
	env.Service, err = app.NewJournalService(app.Config{
		Basis:         cfg.AccountingBasis,
		PortfolioSize: env.Sizes.Resolver(),
		ChunkSize:     cfg.ImportChunkSize,
	}, env.Logger, env.Repo, quotes)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to initialize journal service: %w", err)
	}
	env.Logger.Info(ctx, "Journal service initialized", map[string]interface{}{
		"basis":       string(cfg.AccountingBasis),
		"quoteSource": cfg.QuoteSource,
	})

	// 7. Initialize Risk Limits
	env.Risk = risk.NewRiskManager(risk.RiskConfig{
		MaxPortfolioHeat:  cfg.MaxPortfolioHeat,
		MaxOpenPositions:  cfg.MaxOpenPositions,
		MaxAllocationPct:  cfg.MaxAllocationPct,
		MaxPositionHeat:   cfg.MaxPositionHeat,
		MaxImpactDrawdown: cfg.MaxImpactDrawdown,
	})
	return env, nil
}

// Close flushes spans and closes the database.
func (e *Env) Close() {
	ctx := context.Background()
	if err := trace.Shutdown(ctx); err != nil {
		e.Logger.Error(ctx, err, "Error flushing traces")
	}
	if e.Repo != nil {
		if err := e.Repo.Close(); err != nil {
			e.Logger.Error(ctx, err, "Error closing database repository")
		}
	}
}

// Progress returns a ProgressFunc that logs each completed chunk.
func (e *Env) Progress(op string) app.ProgressFunc {
	return func(done, total int) {
		e.Logger.Info(context.Background(), op+" progress", map[string]interface{}{"done": done, "total": total})
	}
}
