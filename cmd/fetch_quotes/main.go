package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/binanceclient"
	"tradeJournal/internal/adapters/logger"
)

// fetch_quotes prints the price a refresh would use for each symbol.
func main() {
	symbols := flag.String("symbols", "", "comma-separated journal symbols, e.g. BTC,ETH")
	flag.Parse()
	if *symbols == "" {
		log.Fatal("FATAL: -symbols is required")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:       cfg.APIKey,
		SecretKey:    cfg.SecretKey,
		UseTestnet:   cfg.IsTestnet,
		Logger:       appLogger,
		SymbolSuffix: cfg.QuoteSymbolSuffix,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, name := range strings.Split(*symbols, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		price, err := binanceClient.LastPrice(ctx, name)
		if err != nil {
			fmt.Printf("%s\t%s\terror: %v\n", name, binanceClient.Symbol(name), err)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", name, binanceClient.Symbol(name), price.String())
	}
}
