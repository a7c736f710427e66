package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Client implements the ports.QuoteProvider interface using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	symbolSuffix  string
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
	// SymbolSuffix is appended to journal symbols that do not already carry
	// it, so "BTC" is quoted as "BTCUSDT".
	SymbolSuffix string
	// BaseURL overrides the production/testnet endpoint.
	BaseURL string
}

// New creates a new Binance client adapter. Quotes only need public
// endpoints, so empty keys are accepted.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance quote client configured", map[string]interface{}{"baseURL": client.BaseURL, "testnet": cfg.UseTestnet})

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		symbolSuffix:  strings.ToUpper(cfg.SymbolSuffix),
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string, symbol string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "symbol": symbol}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1121: // Invalid symbol
			mappedErr = ports.ErrNotFound
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1128: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrQuoteUnavailable
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrQuoteUnavailable, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Symbol maps a journal ticker to the exchange symbol that is quoted.
func (c *Client) Symbol(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	if c.symbolSuffix != "" && !strings.HasSuffix(s, c.symbolSuffix) {
		s += c.symbolSuffix
	}
	return s
}

// LastPrice retrieves the last traded price for a journal symbol.
func (c *Client) LastPrice(ctx context.Context, name string) (decimal.Decimal, error) {
	op := "LastPrice"
	symbol := c.Symbol(name)
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("%s: empty symbol: %w", op, ports.ErrInvalidRequest)
	}

	tickers, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, c.handleError(ctx, err, op, symbol)
	}
	if len(tickers) == 0 {
		err := fmt.Errorf("no ticker data returned for symbol %s", symbol)
		return decimal.Zero, c.handleError(ctx, err, op, symbol)
	}

	price, err := decimal.NewFromString(tickers[0].LastPrice)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].LastPrice, err)
		return decimal.Zero, c.handleError(ctx, parseErr, op, symbol)
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "price": price.String()})
	return price, nil
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op, "")
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}
