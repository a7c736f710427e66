package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tradeJournal/config"
	"tradeJournal/internal/bootstrap"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/utils"
)

func main() {
	file := flag.String("file", "", "CSV file of trades to import")
	flag.Parse()
	if *file == "" {
		log.Fatal("FATAL: -file is required")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Wire adapters and the journal service
	env, err := bootstrap.Setup(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer env.Close()
	appLogger := env.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Parse the file; bad rows are reported and skipped
	trades, rowErrs, err := utils.ReadTradesFromFile(*file)
	if err != nil {
		appLogger.Error(ctx, err, "Error reading trade file", map[string]interface{}{"file": *file})
		return
	}
	for _, re := range rowErrs {
		appLogger.Warn(ctx, "Skipping row", map[string]interface{}{"line": re.Line, "error": re.Err.Error()})
	}
	appLogger.Info(ctx, "Loaded trades", map[string]interface{}{"file": *file, "count": len(trades), "skipped": len(rowErrs)})

	// 4. Recompute and store
	res, err := env.Service.Import(ctx, trades, env.Progress("Import"))
	if err != nil && !errors.Is(err, ports.ErrContextCanceled) {
		appLogger.Error(ctx, err, "Import failed", map[string]interface{}{"stored": res.Processed})
		return
	}

	fmt.Printf("Imported %d of %d trades from %s\n", res.Processed, res.Total, *file)
	if len(rowErrs) > 0 {
		fmt.Printf("Skipped %d malformed rows\n", len(rowErrs))
	}
	if len(res.OverExits) > 0 {
		fmt.Printf("Trades with exits exceeding entries: %v\n", res.OverExits)
	}
	if err != nil {
		fmt.Println("Import interrupted; completed chunks were kept.")
	}
}
