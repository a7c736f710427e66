package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"tradeJournal/config"
	"tradeJournal/internal/bootstrap"
	"tradeJournal/internal/ports"
)

// main re-derives every stored trade, for example after the portfolio sizes
// or the accounting basis changed, and refreshes open positions when a quote
// source is configured.
func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Wire adapters and the journal service
	env, err := bootstrap.Setup(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer env.Close()
	appLogger := env.Logger

	// 3. Cancel between chunks on SIGINT/SIGTERM; finished chunks stay stored
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Recompute the whole journal
	res, err := env.Service.RecomputeAll(ctx, env.Progress("Recompute"))
	if err != nil {
		if errors.Is(err, ports.ErrContextCanceled) {
			appLogger.Warn(ctx, "Recompute interrupted", map[string]interface{}{"processed": res.Processed, "total": res.Total})
			return
		}
		appLogger.Error(ctx, err, "Recompute failed")
		return
	}
	appLogger.Info(ctx, "Journal recomputed", map[string]interface{}{"trades": res.Processed, "overExits": res.OverExits})

	// 5. Refresh open positions
	if env.Quotes == nil {
		return
	}
	if err := env.Quotes.Ping(ctx); err != nil {
		appLogger.Error(ctx, err, "Quote source unreachable, skipping price refresh")
		return
	}
	refresh, err := env.Service.RefreshPrices(ctx, env.Progress("Price refresh"))
	if err != nil {
		appLogger.Error(ctx, err, "Price refresh failed")
		return
	}
	appLogger.Info(ctx, "Prices refreshed", map[string]interface{}{
		"quoted":  len(refresh.Quoted),
		"failed":  len(refresh.Failed),
		"updated": refresh.Processed,
	})

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
