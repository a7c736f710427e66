package domain

import (
	"fmt"
	"sort"
)

// FieldID names an editable raw field of a Trade.
type FieldID string

const (
	FieldName           FieldID = "name"
	FieldSetup          FieldID = "setup"
	FieldNotes          FieldID = "notes"
	FieldDate           FieldID = "date"
	FieldEntry          FieldID = "entry"
	FieldInitialQty     FieldID = "initialQty"
	FieldSL             FieldID = "sl"
	FieldTSL            FieldID = "tsl"
	FieldPyramid1Price  FieldID = "pyramid1Price"
	FieldPyramid1Qty    FieldID = "pyramid1Qty"
	FieldPyramid1Date   FieldID = "pyramid1Date"
	FieldPyramid2Price  FieldID = "pyramid2Price"
	FieldPyramid2Qty    FieldID = "pyramid2Qty"
	FieldPyramid2Date   FieldID = "pyramid2Date"
	FieldExit1Price     FieldID = "exit1Price"
	FieldExit1Qty       FieldID = "exit1Qty"
	FieldExit1Date      FieldID = "exit1Date"
	FieldExit2Price     FieldID = "exit2Price"
	FieldExit2Qty       FieldID = "exit2Qty"
	FieldExit2Date      FieldID = "exit2Date"
	FieldExit3Price     FieldID = "exit3Price"
	FieldExit3Qty       FieldID = "exit3Qty"
	FieldExit3Date      FieldID = "exit3Date"
	FieldCMP            FieldID = "cmp"
	FieldBuySell        FieldID = "buySell"
	FieldPositionStatus FieldID = "positionStatus"
)

var knownFields = map[FieldID]struct{}{
	FieldName: {}, FieldSetup: {}, FieldNotes: {}, FieldDate: {},
	FieldEntry: {}, FieldInitialQty: {}, FieldSL: {}, FieldTSL: {},
	FieldPyramid1Price: {}, FieldPyramid1Qty: {}, FieldPyramid1Date: {},
	FieldPyramid2Price: {}, FieldPyramid2Qty: {}, FieldPyramid2Date: {},
	FieldExit1Price: {}, FieldExit1Qty: {}, FieldExit1Date: {},
	FieldExit2Price: {}, FieldExit2Qty: {}, FieldExit2Date: {},
	FieldExit3Price: {}, FieldExit3Qty: {}, FieldExit3Date: {},
	FieldCMP: {}, FieldBuySell: {}, FieldPositionStatus: {},
}

// ParseFieldID validates a stored field name.
func ParseFieldID(s string) (FieldID, error) {
	id := FieldID(s)
	if _, ok := knownFields[id]; !ok {
		return "", fmt.Errorf("unknown field %q", s)
	}
	return id, nil
}

const (
	partPrice = iota
	partQty
	partDate
)

func pyramidField(label LotLabel, part int) FieldID {
	ids := [2][3]FieldID{
		{FieldPyramid1Price, FieldPyramid1Qty, FieldPyramid1Date},
		{FieldPyramid2Price, FieldPyramid2Qty, FieldPyramid2Date},
	}
	if label != Pyramid1 && label != Pyramid2 {
		return ""
	}
	return ids[label-Pyramid1][part]
}

func exitField(slot, part int) FieldID {
	ids := [MaxExits][3]FieldID{
		{FieldExit1Price, FieldExit1Qty, FieldExit1Date},
		{FieldExit2Price, FieldExit2Qty, FieldExit2Date},
		{FieldExit3Price, FieldExit3Qty, FieldExit3Date},
	}
	if slot < 1 || slot > MaxExits {
		return ""
	}
	return ids[slot-1][part]
}

// FieldSet is an immutable set of field IDs, used for the fields a user has
// set by hand and which must not be auto-derived. The zero value is empty.
type FieldSet struct {
	m map[FieldID]struct{}
}

// NewFieldSet builds a set from ids.
func NewFieldSet(ids ...FieldID) FieldSet {
	m := make(map[FieldID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return FieldSet{m: m}
}

// Has reports whether id is in the set.
func (s FieldSet) Has(id FieldID) bool {
	_, ok := s.m[id]
	return ok
}

// Len returns the number of fields in the set.
func (s FieldSet) Len() int { return len(s.m) }

// With returns a copy of the set including id.
func (s FieldSet) With(id FieldID) FieldSet {
	if s.Has(id) {
		return s
	}
	return NewFieldSet(append(s.IDs(), id)...)
}

// Without returns a copy of the set excluding id.
func (s FieldSet) Without(id FieldID) FieldSet {
	if !s.Has(id) {
		return s
	}
	ids := make([]FieldID, 0, len(s.m))
	for k := range s.m {
		if k != id {
			ids = append(ids, k)
		}
	}
	return NewFieldSet(ids...)
}

// IDs returns the members in sorted order.
func (s FieldSet) IDs() []FieldID {
	ids := make([]FieldID, 0, len(s.m))
	for k := range s.m {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
