package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/accounting"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/trace"
)

// DefaultChunkSize is the number of trades recomputed between yields.
const DefaultChunkSize = 50

// Config holds the settings JournalService needs.
type Config struct {
	Basis         domain.AccountingBasis
	PortfolioSize ports.PortfolioSizeResolver
	ChunkSize     int
	// Now anchors holding days for open lots. Defaults to time.Now.
	Now func() time.Time
}

// ProgressFunc is called after each completed chunk. done only increases.
type ProgressFunc func(done, total int)

// BatchResult describes a bulk run. Trades holds every trade of the
// completed chunks, already persisted.
type BatchResult struct {
	Total     int
	Processed int
	Trades    []ports.StoredTrade
	// OverExits lists trades whose exits exceed their entries.
	OverExits []string
}

// RefreshResult describes a price refresh.
type RefreshResult struct {
	BatchResult
	Quoted []string         // symbols that were priced
	Failed map[string]error // symbols that could not be priced
}

type quote struct {
	price decimal.Decimal
	err   error
}

// JournalService orchestrates imports, edits and price refreshes around the
// pure accounting engine.
type JournalService struct {
	cfg    Config
	logger ports.Logger
	repo   ports.TradeRepository
	quotes ports.QuoteProvider // optional
}

// NewJournalService creates a new application service instance. quotes may
// be nil when no quote source is configured.
func NewJournalService(cfg Config, logger ports.Logger, repo ports.TradeRepository, quotes ports.QuoteProvider) (*JournalService, error) {
	if logger == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	if cfg.Basis != domain.Cash && cfg.Basis != domain.Accrual {
		return nil, fmt.Errorf("unknown accounting basis %q: %w", cfg.Basis, ports.ErrConfigurationError)
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size must not be negative: %w", ports.ErrConfigurationError)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JournalService{cfg: cfg, logger: logger, repo: repo, quotes: quotes}, nil
}

func (s *JournalService) recomputeContext(overrides domain.FieldSet, today time.Time) accounting.Context {
	return accounting.Context{
		PortfolioSize: s.cfg.PortfolioSize,
		Basis:         s.cfg.Basis,
		Overrides:     overrides,
		Today:         today,
	}
}

// recompute runs the cascade and logs over-exits. Over-exit is a data
// problem, not a failure, so the trade is always usable.
func (s *JournalService) recompute(ctx context.Context, st ports.StoredTrade, today time.Time) (ports.StoredTrade, bool) {
	t, err := accounting.Recompute(st.Trade, s.recomputeContext(st.Overrides, today))
	var overExit *accounting.OverExitError
	if errors.As(err, &overExit) {
		s.logger.Warn(ctx, "Exit quantity exceeds entry quantity", map[string]interface{}{
			"tradeID":   overExit.TradeID,
			"entryQty":  overExit.EntryQty,
			"exitQty":   overExit.ExitQty,
			"unmatched": overExit.Unmatched,
		})
	}
	return ports.StoredTrade{Trade: t, Overrides: st.Overrides}, overExit != nil
}

// Import recomputes and stores trades read from a file, in order. Trades
// without an ID get a new one in the result; the input is not modified.
func (s *JournalService) Import(ctx context.Context, trades []ports.StoredTrade, progress ProgressFunc) (BatchResult, error) {
	s.logger.Info(ctx, "Importing trades", map[string]interface{}{"count": len(trades), "chunkSize": s.cfg.ChunkSize})
	batch := make([]ports.StoredTrade, len(trades))
	copy(batch, trades)
	for i := range batch {
		if batch[i].Trade.ID == "" {
			batch[i].Trade.ID = uuid.New().String()
		}
	}
	return s.processBatch(ctx, "journal.Import", batch, progress)
}

// RecomputeAll re-derives every stored trade, for example after the
// portfolio sizes or the accounting basis changed.
func (s *JournalService) RecomputeAll(ctx context.Context, progress ProgressFunc) (BatchResult, error) {
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load trades: %w", err)
	}
	s.logger.Info(ctx, "Recomputing all trades", map[string]interface{}{"count": len(trades)})
	return s.processBatch(ctx, "journal.RecomputeAll", trades, progress)
}

// processBatch recomputes trades chunk by chunk, persisting each chunk before
// yielding. Cancellation stops before the next chunk; completed chunks stay
// stored and are returned.
func (s *JournalService) processBatch(ctx context.Context, spanName string, trades []ports.StoredTrade, progress ProgressFunc) (BatchResult, error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer span.End()

	res := BatchResult{Total: len(trades), Trades: make([]ports.StoredTrade, 0, len(trades))}
	today := s.cfg.Now()
	start := time.Now()

	for lo := 0; lo < len(trades); lo += s.cfg.ChunkSize {
		if err := ctx.Err(); err != nil {
			s.logger.Warn(ctx, "Batch recompute canceled", map[string]interface{}{"processed": res.Processed, "total": res.Total})
			return res, fmt.Errorf("canceled after %d of %d trades: %w: %w", res.Processed, res.Total, ports.ErrContextCanceled, err)
		}
		hi := min(lo+s.cfg.ChunkSize, len(trades))

		if err := s.processChunk(ctx, trades[lo:hi], today, &res); err != nil {
			return res, err
		}
		if progress != nil {
			progress(res.Processed, res.Total)
		}
		runtime.Gosched()
	}

	s.logger.Info(ctx, "Batch recompute finished", map[string]interface{}{
		"processed":   res.Processed,
		"overExits":   len(res.OverExits),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

func (s *JournalService) processChunk(ctx context.Context, chunk []ports.StoredTrade, today time.Time, res *BatchResult) error {
	ctx, span := trace.StartSpan(ctx, "journal.RecomputeChunk")
	defer span.End()

	out := make([]ports.StoredTrade, 0, len(chunk))
	for _, st := range chunk {
		updated, overExit := s.recompute(ctx, st, today)
		if overExit {
			res.OverExits = append(res.OverExits, updated.Trade.ID)
		}
		out = append(out, updated)
	}
	if err := s.repo.SaveBatch(ctx, out); err != nil {
		s.logger.Error(ctx, err, "Failed to store recomputed chunk", map[string]interface{}{"offset": res.Processed, "size": len(out)})
		return fmt.Errorf("failed to store trades %d-%d: %w", res.Processed+1, res.Processed+len(out), err)
	}
	res.Trades = append(res.Trades, out...)
	res.Processed += len(out)
	return nil
}

// AddTrade recomputes and stores a single new trade.
func (s *JournalService) AddTrade(ctx context.Context, st ports.StoredTrade) (*ports.StoredTrade, error) {
	if st.Trade.ID == "" {
		st.Trade.ID = uuid.New().String()
	}
	updated, _ := s.recompute(ctx, st, s.cfg.Now())
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to add trade: %w", err)
	}
	s.logger.Info(ctx, "Trade added", map[string]interface{}{"tradeID": updated.Trade.ID, "name": updated.Trade.Name})
	return &updated, nil
}

// ApplyEdit applies one inline edit to a stored trade and runs the cascade
// when the edited field feeds any derived value. Setting the position
// status marks it as user-set; setting it to "" hands it back to the
// engine.
func (s *JournalService) ApplyEdit(ctx context.Context, id string, edit domain.FieldEdit) (*ports.StoredTrade, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade %s: %w", id, err)
	}
	if st == nil {
		return nil, fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}

	t, cascade, err := domain.ApplyEdit(st.Trade, edit)
	if err != nil {
		return nil, fmt.Errorf("trade %s: %w: %v", id, ports.ErrInvalidRequest, err)
	}

	overrides := st.Overrides
	if e, ok := edit.(domain.SetPositionStatus); ok {
		if e.Status == "" {
			overrides = overrides.Without(domain.FieldPositionStatus)
		} else {
			overrides = overrides.With(domain.FieldPositionStatus)
		}
	}

	updated := ports.StoredTrade{Trade: t, Overrides: overrides}
	if cascade {
		updated, _ = s.recompute(ctx, updated, s.cfg.Now())
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save edit of trade %s: %w", id, err)
	}
	s.logger.Debug(ctx, "Trade edited", map[string]interface{}{"tradeID": id, "field": string(edit.Field()), "cascade": cascade})
	return &updated, nil
}

// DeleteTrade removes a trade. Other trades are not affected.
func (s *JournalService) DeleteTrade(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// RefreshPrices fetches a current price for every symbol with an open or
// partial position, sets it as the CMP and recomputes those trades.
// Symbols that cannot be priced keep their old CMP.
func (s *JournalService) RefreshPrices(ctx context.Context, progress ProgressFunc) (RefreshResult, error) {
	res := RefreshResult{Failed: make(map[string]error)}
	if s.quotes == nil {
		return res, fmt.Errorf("no quote source configured: %w", ports.ErrConfigurationError)
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load trades: %w", err)
	}

	quoted := make(map[string]quote)
	var changed []ports.StoredTrade
	for _, st := range all {
		if st.Trade.PositionStatus == domain.StatusClosed {
			continue
		}
		q, seen := quoted[st.Trade.Name]
		if !seen {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("price refresh canceled: %w: %w", ports.ErrContextCanceled, err)
			}
			price, err := s.quotes.LastPrice(ctx, st.Trade.Name)
			q = quote{price: price, err: err}
			if err == nil && !price.IsPositive() {
				q.err = fmt.Errorf("non-positive price %s: %w", price, ports.ErrQuoteUnavailable)
			}
			quoted[st.Trade.Name] = q
			if q.err != nil {
				s.logger.Warn(ctx, "No quote for symbol", map[string]interface{}{"symbol": st.Trade.Name, "error": q.err.Error()})
				res.Failed[st.Trade.Name] = q.err
			} else {
				res.Quoted = append(res.Quoted, st.Trade.Name)
			}
		}
		if q.err != nil {
			continue
		}
		t, _, err := domain.ApplyEdit(st.Trade, domain.SetCMP{Price: q.price})
		if err != nil {
			return res, err
		}
		changed = append(changed, ports.StoredTrade{Trade: t, Overrides: st.Overrides})
	}

	batch, err := s.processBatch(ctx, "journal.RefreshPrices", changed, progress)
	res.BatchResult = batch
	return res, err
}

// Summary computes journal-wide metrics from the stored trades.
func (s *JournalService) Summary(ctx context.Context) (*analytics.JournalMetrics, error) {
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	raw := make([]domain.Trade, len(trades))
	for i, st := range trades {
		raw[i] = st.Trade
	}
	return analytics.AnalyzeJournal(raw, s.cfg.Basis), nil
}
