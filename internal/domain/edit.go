package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FieldEdit is a single user edit of one raw field. The set of variants is
// closed; ApplyEdit switches over all of them.
type FieldEdit interface {
	// Field returns the raw field the edit writes.
	Field() FieldID
	isFieldEdit()
}

type (
	SetName  struct{ Name string }
	SetSetup struct{ Setup string }
	SetNotes struct{ Notes string }
	SetDate  struct{ Date time.Time }

	SetEntryPrice   struct{ Price decimal.Decimal }
	SetInitialQty   struct{ Quantity int64 }
	SetStopLoss     struct{ Price decimal.Decimal }
	SetTrailingStop struct{ Price decimal.Decimal }

	SetPyramidPrice struct {
		Label LotLabel
		Price decimal.Decimal
	}
	SetPyramidQty struct {
		Label    LotLabel
		Quantity int64
	}
	SetPyramidDate struct {
		Label LotLabel
		Date  time.Time
	}
	// ClearPyramid removes a pyramid slot entirely.
	ClearPyramid struct{ Label LotLabel }

	SetExitPrice struct {
		Slot  int
		Price decimal.Decimal
	}
	SetExitQty struct {
		Slot     int
		Quantity int64
	}
	SetExitDate struct {
		Slot int
		Date time.Time
	}
	// ClearExit removes an exit slot entirely.
	ClearExit struct{ Slot int }

	SetCMP            struct{ Price decimal.Decimal }
	SetDirection      struct{ Direction Direction }
	SetPositionStatus struct{ Status PositionStatus }
)

func (SetName) Field() FieldID           { return FieldName }
func (SetSetup) Field() FieldID          { return FieldSetup }
func (SetNotes) Field() FieldID          { return FieldNotes }
func (SetDate) Field() FieldID           { return FieldDate }
func (SetEntryPrice) Field() FieldID     { return FieldEntry }
func (SetInitialQty) Field() FieldID     { return FieldInitialQty }
func (SetStopLoss) Field() FieldID       { return FieldSL }
func (SetTrailingStop) Field() FieldID   { return FieldTSL }
func (e SetPyramidPrice) Field() FieldID { return pyramidField(e.Label, partPrice) }
func (e SetPyramidQty) Field() FieldID   { return pyramidField(e.Label, partQty) }
func (e SetPyramidDate) Field() FieldID  { return pyramidField(e.Label, partDate) }
func (e ClearPyramid) Field() FieldID    { return pyramidField(e.Label, partQty) }
func (e SetExitPrice) Field() FieldID    { return exitField(e.Slot, partPrice) }
func (e SetExitQty) Field() FieldID      { return exitField(e.Slot, partQty) }
func (e SetExitDate) Field() FieldID     { return exitField(e.Slot, partDate) }
func (e ClearExit) Field() FieldID       { return exitField(e.Slot, partQty) }
func (SetCMP) Field() FieldID            { return FieldCMP }
func (SetDirection) Field() FieldID      { return FieldBuySell }
func (SetPositionStatus) Field() FieldID { return FieldPositionStatus }

func (SetName) isFieldEdit()           {}
func (SetSetup) isFieldEdit()          {}
func (SetNotes) isFieldEdit()          {}
func (SetDate) isFieldEdit()           {}
func (SetEntryPrice) isFieldEdit()     {}
func (SetInitialQty) isFieldEdit()     {}
func (SetStopLoss) isFieldEdit()       {}
func (SetTrailingStop) isFieldEdit()   {}
func (SetPyramidPrice) isFieldEdit()   {}
func (SetPyramidQty) isFieldEdit()     {}
func (SetPyramidDate) isFieldEdit()    {}
func (ClearPyramid) isFieldEdit()      {}
func (SetExitPrice) isFieldEdit()      {}
func (SetExitQty) isFieldEdit()        {}
func (SetExitDate) isFieldEdit()       {}
func (ClearExit) isFieldEdit()         {}
func (SetCMP) isFieldEdit()            {}
func (SetDirection) isFieldEdit()      {}
func (SetPositionStatus) isFieldEdit() {}

// ApplyEdit returns a copy of t with the edit applied and whether the edit
// requires the full recalculation cascade. Edits to free-text fields do not.
// The input trade is never modified.
func ApplyEdit(t Trade, edit FieldEdit) (Trade, bool, error) {
	out := t.Clone()
	switch e := edit.(type) {
	case SetName:
		out.Name = e.Name
		return out, false, nil
	case SetSetup:
		out.Setup = e.Setup
		return out, false, nil
	case SetNotes:
		out.Notes = e.Notes
		return out, false, nil
	case SetDate:
		out.Date = e.Date
	case SetEntryPrice:
		out.Initial = ensureSlot(out.Initial)
		out.Initial.Price = e.Price
	case SetInitialQty:
		out.Initial = ensureSlot(out.Initial)
		out.Initial.Quantity = e.Quantity
	case SetStopLoss:
		out.StopLoss = e.Price
	case SetTrailingStop:
		out.TrailingStop = e.Price
	case SetPyramidPrice:
		slot, err := out.pyramidSlot(e.Label)
		if err != nil {
			return t, false, err
		}
		*slot = ensureSlot(*slot)
		(*slot).Price = e.Price
	case SetPyramidQty:
		slot, err := out.pyramidSlot(e.Label)
		if err != nil {
			return t, false, err
		}
		*slot = ensureSlot(*slot)
		(*slot).Quantity = e.Quantity
	case SetPyramidDate:
		slot, err := out.pyramidSlot(e.Label)
		if err != nil {
			return t, false, err
		}
		*slot = ensureSlot(*slot)
		(*slot).Date = e.Date
	case ClearPyramid:
		slot, err := out.pyramidSlot(e.Label)
		if err != nil {
			return t, false, err
		}
		*slot = nil
	case SetExitPrice:
		if err := checkExitSlot(e.Slot); err != nil {
			return t, false, err
		}
		out.Exits[e.Slot-1] = ensureSlot(out.Exits[e.Slot-1])
		out.Exits[e.Slot-1].Price = e.Price
	case SetExitQty:
		if err := checkExitSlot(e.Slot); err != nil {
			return t, false, err
		}
		out.Exits[e.Slot-1] = ensureSlot(out.Exits[e.Slot-1])
		out.Exits[e.Slot-1].Quantity = e.Quantity
	case SetExitDate:
		if err := checkExitSlot(e.Slot); err != nil {
			return t, false, err
		}
		out.Exits[e.Slot-1] = ensureSlot(out.Exits[e.Slot-1])
		out.Exits[e.Slot-1].Date = e.Date
	case ClearExit:
		if err := checkExitSlot(e.Slot); err != nil {
			return t, false, err
		}
		out.Exits[e.Slot-1] = nil
	case SetCMP:
		out.CMP = e.Price
	case SetDirection:
		if !e.Direction.Valid() {
			return t, false, fmt.Errorf("unknown direction %q", e.Direction)
		}
		out.Direction = e.Direction
	case SetPositionStatus:
		// "" hands the status back to the engine.
		if e.Status != "" && !e.Status.Valid() {
			return t, false, fmt.Errorf("unknown position status %q", e.Status)
		}
		out.PositionStatus = e.Status
	default:
		return t, false, fmt.Errorf("unsupported edit %T", edit)
	}
	return out, true, nil
}

func ensureSlot(l *LotInput) *LotInput {
	if l == nil {
		return &LotInput{}
	}
	return l
}

func (t *Trade) pyramidSlot(label LotLabel) (**LotInput, error) {
	switch label {
	case Pyramid1:
		return &t.Pyramid1, nil
	case Pyramid2:
		return &t.Pyramid2, nil
	default:
		return nil, fmt.Errorf("%s is not a pyramid slot", label)
	}
}

func checkExitSlot(slot int) error {
	if slot < 1 || slot > MaxExits {
		return fmt.Errorf("exit slot %d out of range 1..%d", slot, MaxExits)
	}
	return nil
}
