package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, fmt.Errorf("%w: %v", ports.ErrDBConnection, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, fmt.Errorf("%w: %v", ports.ErrDBConnection, err)
	}

	// A single writer keeps SQLite from returning SQLITE_BUSY under the batch importer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// Decimal amounts are stored as TEXT so they round-trip exactly.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		setup TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		direction TEXT NOT NULL,
		trade_date DATE NOT NULL,
		initial_price TEXT NULL, initial_qty INTEGER NULL, initial_date DATE NULL,
		pyramid1_price TEXT NULL, pyramid1_qty INTEGER NULL, pyramid1_date DATE NULL,
		pyramid2_price TEXT NULL, pyramid2_qty INTEGER NULL, pyramid2_date DATE NULL,
		exit1_price TEXT NULL, exit1_qty INTEGER NULL, exit1_date DATE NULL,
		exit2_price TEXT NULL, exit2_qty INTEGER NULL, exit2_date DATE NULL,
		exit3_price TEXT NULL, exit3_qty INTEGER NULL, exit3_date DATE NULL,
		stop_loss TEXT NOT NULL DEFAULT '0',
		trailing_stop TEXT NOT NULL DEFAULT '0',
		cmp TEXT NOT NULL DEFAULT '0',
		position_status TEXT NOT NULL,
		overrides TEXT NOT NULL DEFAULT '',

		avg_entry TEXT NOT NULL DEFAULT '0',
		avg_exit_price TEXT NOT NULL DEFAULT '0',
		total_qty INTEGER NOT NULL DEFAULT 0,
		open_qty INTEGER NOT NULL DEFAULT 0,
		exited_qty INTEGER NOT NULL DEFAULT 0,
		position_size TEXT NOT NULL DEFAULT '0',
		allocation_pct REAL NOT NULL DEFAULT 0,
		stock_move_pct REAL NOT NULL DEFAULT 0,
		reward_risk REAL NULL, -- NULL when risk-free
		traditional_rr REAL NULL, -- NULL when risk-free
		has_risk_free INTEGER NOT NULL DEFAULT 0,
		holding_days INTEGER NOT NULL DEFAULT 0,
		realised_amount TEXT NOT NULL DEFAULT '0',
		pl_rs TEXT NOT NULL DEFAULT '0',
		unrealized_pl TEXT NOT NULL DEFAULT '0',
		pf_impact REAL NOT NULL DEFAULT 0,
		open_heat REAL NOT NULL DEFAULT 0,
		over_exit_qty INTEGER NOT NULL DEFAULT 0,
		low_confidence_exits TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades (trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_name_status ON trades (name, position_status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

var tradeColumns = []string{
	"id", "name", "setup", "notes", "direction", "trade_date",
	"initial_price", "initial_qty", "initial_date",
	"pyramid1_price", "pyramid1_qty", "pyramid1_date",
	"pyramid2_price", "pyramid2_qty", "pyramid2_date",
	"exit1_price", "exit1_qty", "exit1_date",
	"exit2_price", "exit2_qty", "exit2_date",
	"exit3_price", "exit3_qty", "exit3_date",
	"stop_loss", "trailing_stop", "cmp", "position_status", "overrides",
	"avg_entry", "avg_exit_price", "total_qty", "open_qty", "exited_qty",
	"position_size", "allocation_pct", "stock_move_pct", "reward_risk", "traditional_rr",
	"has_risk_free", "holding_days", "realised_amount", "pl_rs", "unrealized_pl",
	"pf_impact", "open_heat", "over_exit_qty", "low_confidence_exits",
}

var (
	selectTrades = "SELECT " + strings.Join(tradeColumns, ", ") + " FROM trades"
	upsertTrade  = "INSERT OR REPLACE INTO trades (" + strings.Join(tradeColumns, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(tradeColumns)), ", ") + ")"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Save inserts or replaces a trade and its override set.
func (r *Repository) Save(ctx context.Context, st ports.StoredTrade) error {
	if err := r.save(ctx, r.db, st); err != nil {
		return err
	}
	r.logger.Debug(ctx, "Trade saved", map[string]interface{}{"tradeID": st.Trade.ID, "name": st.Trade.Name})
	return nil
}

// SaveBatch stores several trades in one transaction. Either all are stored
// or none are.
func (r *Repository) SaveBatch(ctx context.Context, sts []ports.StoredTrade) error {
	if len(sts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch save: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	for _, st := range sts {
		if err := r.save(ctx, tx, st); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch of %d trades: %w", len(sts), err)
	}
	r.logger.Debug(ctx, "Trade batch saved", map[string]interface{}{"count": len(sts)})
	return nil
}

func (r *Repository) save(ctx context.Context, ex execer, st ports.StoredTrade) error {
	if st.Trade.ID == "" {
		return fmt.Errorf("trade without ID: %w", ports.ErrInvalidTrade)
	}
	if _, err := ex.ExecContext(ctx, upsertTrade, tradeArgs(st)...); err != nil {
		return fmt.Errorf("failed to save trade %s: %w: %v", st.Trade.ID, ports.ErrUpdateFailed, err)
	}
	return nil
}

// FindByID retrieves a trade by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*ports.StoredTrade, error) {
	row := r.db.QueryRowContext(ctx, selectTrades+" WHERE id = ?", id)
	st, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %s: %w: %v", id, ports.ErrQueryFailed, err)
	}
	return st, nil
}

// FindAll retrieves all trades, ordered by trade date ascending.
func (r *Repository) FindAll(ctx context.Context) ([]ports.StoredTrade, error) {
	rows, err := r.db.QueryContext(ctx, selectTrades+" ORDER BY trade_date ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]ports.StoredTrade, 0)
	for rows.Next() {
		st, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAll: %w", err)
		}
		trades = append(trades, *st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// Delete removes a trade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w: %v", id, ports.ErrDeleteFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// --- Row mapping ---

func tradeArgs(st ports.StoredTrade) []interface{} {
	t := st.Trade
	d := t.Derived
	args := []interface{}{t.ID, t.Name, t.Setup, t.Notes, string(t.Direction), t.Date}
	for _, l := range []*domain.LotInput{t.Initial, t.Pyramid1, t.Pyramid2, t.Exits[0], t.Exits[1], t.Exits[2]} {
		args = append(args, slotArgs(l)...)
	}
	args = append(args,
		t.StopLoss.String(), t.TrailingStop.String(), t.CMP.String(),
		string(t.PositionStatus), joinFields(st.Overrides),
		d.AvgEntry.String(), d.AvgExitPrice.String(), d.TotalQty, d.OpenQty, d.ExitedQty,
		d.PositionSize.String(), d.AllocationPct, d.StockMovePct, finiteOrNull(d.RewardRisk), finiteOrNull(d.TraditionalRR),
		d.HasRiskFree, d.HoldingDays, d.RealisedAmount.String(), d.PLRs.String(), d.UnrealizedPL.String(),
		d.PFImpact, d.OpenHeat, d.OverExitQty, joinInts(d.LowConfidenceExits),
	)
	return args
}

func slotArgs(l *domain.LotInput) []interface{} {
	if l == nil {
		return []interface{}{nil, nil, nil}
	}
	var date interface{}
	if !l.Date.IsZero() {
		date = l.Date
	}
	return []interface{}{l.Price.String(), l.Quantity, date}
}

// slotColumns receives one lot slot's three nullable columns.
type slotColumns struct {
	price decimal.NullDecimal
	qty   sql.NullInt64
	date  sql.NullTime
}

func (c *slotColumns) dest() []interface{} {
	return []interface{}{&c.price, &c.qty, &c.date}
}

func (c *slotColumns) lot() *domain.LotInput {
	if !c.price.Valid && !c.qty.Valid {
		return nil
	}
	l := &domain.LotInput{Price: c.price.Decimal, Quantity: c.qty.Int64}
	if c.date.Valid {
		l.Date = c.date.Time
	}
	return l
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a ports.StoredTrade.
func scanTrade(s scanner) (*ports.StoredTrade, error) {
	var (
		t                  domain.Trade
		d                  domain.DerivedFields
		direction, status  string
		overrides, lowConf string
		slots              [6]slotColumns
		rewardRisk, tradRR sql.NullFloat64
	)
	dest := []interface{}{&t.ID, &t.Name, &t.Setup, &t.Notes, &direction, &t.Date}
	for i := range slots {
		dest = append(dest, slots[i].dest()...)
	}
	dest = append(dest,
		&t.StopLoss, &t.TrailingStop, &t.CMP, &status, &overrides,
		&d.AvgEntry, &d.AvgExitPrice, &d.TotalQty, &d.OpenQty, &d.ExitedQty,
		&d.PositionSize, &d.AllocationPct, &d.StockMovePct, &rewardRisk, &tradRR,
		&d.HasRiskFree, &d.HoldingDays, &d.RealisedAmount, &d.PLRs, &d.UnrealizedPL,
		&d.PFImpact, &d.OpenHeat, &d.OverExitQty, &lowConf,
	)
	if err := s.Scan(dest...); err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}

	t.Direction = domain.Direction(direction)
	t.PositionStatus = domain.PositionStatus(status)
	t.Initial = slots[0].lot()
	t.Pyramid1 = slots[1].lot()
	t.Pyramid2 = slots[2].lot()
	for i := 0; i < domain.MaxExits; i++ {
		t.Exits[i] = slots[3+i].lot()
	}

	d.RewardRisk = floatOrInf(rewardRisk)
	d.TraditionalRR = floatOrInf(tradRR)
	lc, err := splitInts(lowConf)
	if err != nil {
		return nil, fmt.Errorf("trade %s: bad low_confidence_exits %q: %w", t.ID, lowConf, err)
	}
	d.LowConfidenceExits = lc
	t.Derived = d

	fs, err := splitFields(overrides)
	if err != nil {
		return nil, fmt.Errorf("trade %s: %w", t.ID, err)
	}
	return &ports.StoredTrade{Trade: t, Overrides: fs}, nil
}

// finiteOrNull stores +Inf (risk-free) as NULL.
func finiteOrNull(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrInf(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}

func joinFields(fs domain.FieldSet) string {
	ids := fs.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

func splitFields(s string) (domain.FieldSet, error) {
	if s == "" {
		return domain.FieldSet{}, nil
	}
	var ids []domain.FieldID
	for _, part := range strings.Split(s, ",") {
		id, err := domain.ParseFieldID(part)
		if err != nil {
			return domain.FieldSet{}, err
		}
		ids = append(ids, id)
	}
	return domain.NewFieldSet(ids...), nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
