package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// DateLayout is the only date format accepted in trade files.
const DateLayout = "2006-01-02"

// IDColumn holds the trade ID; every other column is named by its FieldID.
const IDColumn = "id"

// TradeColumns is the canonical column order used when writing.
var TradeColumns = []string{
	IDColumn,
	string(domain.FieldName), string(domain.FieldSetup), string(domain.FieldBuySell), string(domain.FieldDate),
	string(domain.FieldEntry), string(domain.FieldInitialQty), string(domain.FieldSL), string(domain.FieldTSL),
	string(domain.FieldPyramid1Price), string(domain.FieldPyramid1Qty), string(domain.FieldPyramid1Date),
	string(domain.FieldPyramid2Price), string(domain.FieldPyramid2Qty), string(domain.FieldPyramid2Date),
	string(domain.FieldExit1Price), string(domain.FieldExit1Qty), string(domain.FieldExit1Date),
	string(domain.FieldExit2Price), string(domain.FieldExit2Qty), string(domain.FieldExit2Date),
	string(domain.FieldExit3Price), string(domain.FieldExit3Qty), string(domain.FieldExit3Date),
	string(domain.FieldCMP), string(domain.FieldPositionStatus), string(domain.FieldNotes),
}

var requiredColumns = []domain.FieldID{domain.FieldName, domain.FieldDate, domain.FieldBuySell}

// RowError reports a data row that could not be imported. Line is the
// 1-based line in the file, header included.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// ReadTradesFromCSV parses raw trades. Headers must match column names
// exactly; a malformed header fails the whole read. Malformed rows are
// skipped and reported. Rows without an ID get a new one. A non-empty
// position status is taken as a user override.
func ReadTradesFromCSV(r io.Reader) ([]ports.StoredTrade, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty trade file: %w", ports.ErrInvalidRequest)
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		trades  []ports.StoredTrade
		rowErrs []RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		if blank(record) {
			continue
		}
		st, err := parseRow(cols, record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: fmt.Errorf("%w: %v", ports.ErrInvalidTrade, err)})
			continue
		}
		trades = append(trades, st)
	}
	return trades, rowErrs, nil
}

// ReadTradesFromFile opens filename and calls ReadTradesFromCSV.
func ReadTradesFromFile(filename string) ([]ports.StoredTrade, []RowError, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return ReadTradesFromCSV(file)
}

// WriteTradesToCSV writes the raw fields of trades in TradeColumns order.
// Position status is written only where the user overrode it, so reading
// the output back restores the same override sets.
func WriteTradesToCSV(w io.Writer, trades []ports.StoredTrade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(TradeColumns); err != nil {
		return err
	}
	for _, st := range trades {
		if err := writer.Write(formatRow(st)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTradesToFile creates filename and calls WriteTradesToCSV.
func WriteTradesToFile(filename string, trades []ports.StoredTrade) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteTradesToCSV(file, trades)
}

// columns maps a field to its index in the record.
type columns struct {
	id     int
	fields map[domain.FieldID]int
}

func parseHeader(header []string) (columns, error) {
	cols := columns{id: -1, fields: make(map[domain.FieldID]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == IDColumn {
			cols.id = i
			continue
		}
		id, err := domain.ParseFieldID(h)
		if err != nil {
			return cols, fmt.Errorf("column %d: %w: %v", i+1, ports.ErrInvalidRequest, err)
		}
		if _, dup := cols.fields[id]; dup {
			return cols, fmt.Errorf("column %q appears twice: %w", h, ports.ErrInvalidRequest)
		}
		cols.fields[id] = i
	}
	for _, id := range requiredColumns {
		if _, ok := cols.fields[id]; !ok {
			return cols, fmt.Errorf("missing required column %q: %w", id, ports.ErrInvalidRequest)
		}
	}
	return cols, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols columns, record []string) (ports.StoredTrade, error) {
	get := func(id domain.FieldID) string {
		i, ok := cols.fields[id]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var st ports.StoredTrade
	t := &st.Trade

	if cols.id >= 0 && cols.id < len(record) {
		t.ID = strings.TrimSpace(record[cols.id])
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	t.Name = get(domain.FieldName)
	if t.Name == "" {
		return st, errors.New("name is empty")
	}
	t.Setup = get(domain.FieldSetup)
	t.Notes = get(domain.FieldNotes)

	dir, err := domain.ParseDirection(get(domain.FieldBuySell))
	if err != nil {
		return st, err
	}
	t.Direction = dir

	if t.Date, err = parseDate(domain.FieldDate, get(domain.FieldDate)); err != nil {
		return st, err
	}
	if t.Date.IsZero() {
		return st, errors.New("date is empty")
	}

	if t.Initial, err = parseSlot(get, domain.FieldEntry, domain.FieldInitialQty, ""); err != nil {
		return st, err
	}
	if t.Pyramid1, err = parseSlot(get, domain.FieldPyramid1Price, domain.FieldPyramid1Qty, domain.FieldPyramid1Date); err != nil {
		return st, err
	}
	if t.Pyramid2, err = parseSlot(get, domain.FieldPyramid2Price, domain.FieldPyramid2Qty, domain.FieldPyramid2Date); err != nil {
		return st, err
	}
	exitCols := [domain.MaxExits][3]domain.FieldID{
		{domain.FieldExit1Price, domain.FieldExit1Qty, domain.FieldExit1Date},
		{domain.FieldExit2Price, domain.FieldExit2Qty, domain.FieldExit2Date},
		{domain.FieldExit3Price, domain.FieldExit3Qty, domain.FieldExit3Date},
	}
	for i, c := range exitCols {
		if t.Exits[i], err = parseSlot(get, c[0], c[1], c[2]); err != nil {
			return st, err
		}
	}

	if t.StopLoss, err = parseDecimal(domain.FieldSL, get(domain.FieldSL)); err != nil {
		return st, err
	}
	if t.TrailingStop, err = parseDecimal(domain.FieldTSL, get(domain.FieldTSL)); err != nil {
		return st, err
	}
	if t.CMP, err = parseDecimal(domain.FieldCMP, get(domain.FieldCMP)); err != nil {
		return st, err
	}

	if s := get(domain.FieldPositionStatus); s != "" {
		status, err := domain.ParsePositionStatus(s)
		if err != nil {
			return st, err
		}
		t.PositionStatus = status
		st.Overrides = domain.NewFieldSet(domain.FieldPositionStatus)
	}
	return st, nil
}

// parseSlot returns nil when all of the slot's cells are empty. A slot with
// only some cells filled is kept with zero values so the engine treats it as
// present but invalid.
func parseSlot(get func(domain.FieldID) string, priceCol, qtyCol, dateCol domain.FieldID) (*domain.LotInput, error) {
	p, q := get(priceCol), get(qtyCol)
	d := ""
	if dateCol != "" {
		d = get(dateCol)
	}
	if p == "" && q == "" && d == "" {
		return nil, nil
	}

	var (
		l   domain.LotInput
		err error
	)
	if l.Price, err = parseDecimal(priceCol, p); err != nil {
		return nil, err
	}
	if q != "" {
		if l.Quantity, err = strconv.ParseInt(q, 10, 64); err != nil {
			return nil, fmt.Errorf("%s: invalid quantity %q", qtyCol, q)
		}
	}
	if dateCol != "" {
		if l.Date, err = parseDate(dateCol, d); err != nil {
			return nil, err
		}
	}
	return &l, nil
}

func parseDecimal(col domain.FieldID, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", col, s)
	}
	return d, nil
}

func parseDate(col domain.FieldID, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q, want YYYY-MM-DD", col, s)
	}
	return d, nil
}

func formatRow(st ports.StoredTrade) []string {
	t := st.Trade
	row := []string{t.ID, t.Name, t.Setup, string(t.Direction), formatDate(t.Date)}

	if t.Initial != nil {
		row = append(row, t.Initial.Price.String(), strconv.FormatInt(t.Initial.Quantity, 10))
	} else {
		row = append(row, "", "")
	}
	row = append(row, formatDecimal(t.StopLoss), formatDecimal(t.TrailingStop))
	for _, l := range []*domain.LotInput{t.Pyramid1, t.Pyramid2, t.Exits[0], t.Exits[1], t.Exits[2]} {
		row = append(row, formatSlot(l)...)
	}
	row = append(row, formatDecimal(t.CMP))

	status := ""
	if st.Overrides.Has(domain.FieldPositionStatus) {
		status = string(t.PositionStatus)
	}
	return append(row, status, t.Notes)
}

func formatSlot(l *domain.LotInput) []string {
	if l == nil {
		return []string{"", "", ""}
	}
	return []string{l.Price.String(), strconv.FormatInt(l.Quantity, 10), formatDate(l.Date)}
}

func formatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
