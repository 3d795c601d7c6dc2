// Package selection accumulates what a customer picks for a booking: a set of
// seats and a list of food lines.  Every operation returns a fresh value and
// leaves its input untouched.
package selection

import (
	"encoding/json"
	"sort"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// SeatSet is an unordered set of seat ids.  The zero value is an empty set.
type SeatSet struct {
	ids map[uint64]struct{}
}

// NewSeatSet builds a set from ids, collapsing duplicates.
func NewSeatSet(ids ...uint64) SeatSet {
	s := SeatSet{ids: make(map[uint64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s SeatSet) Contains(id uint64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of seats in the set.
func (s SeatSet) Len() int { return len(s.ids) }

// IDs returns the seat ids in ascending order.
func (s SeatSet) IDs() []uint64 {
	out := make([]uint64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s SeatSet) MarshalJSON() ([]byte, error) { return json.Marshal(s.IDs()) }

// UnmarshalJSON decodes an array, dropping duplicates.
func (s *SeatSet) UnmarshalJSON(b []byte) error {
	var ids []uint64
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewSeatSet(ids...)
	return nil
}

// ToggleSeat removes seatID when present and adds it otherwise.
func ToggleSeat(set SeatSet, seatID uint64) SeatSet {
	out := NewSeatSet(set.IDs()...)
	if out.Contains(seatID) {
		delete(out.ids, seatID)
	} else {
		out.ids[seatID] = struct{}{}
	}
	return out
}

// AdjustFoodQuantity applies delta to the line for foodID.
//
// A missing line is created with quantity delta when delta is positive and
// ignored otherwise.  An existing line whose quantity drops to zero or below
// is removed.  Order of the remaining lines is preserved.
func AdjustFoodQuantity(lines []model.FoodOrderLine, foodID uint64, delta int) []model.FoodOrderLine {
	out := make([]model.FoodOrderLine, 0, len(lines)+1)
	found := false
	for _, l := range lines {
		if l.FoodID != foodID {
			out = append(out, l)
			continue
		}
		found = true
		if q := l.Quantity + delta; q > 0 {
			out = append(out, model.FoodOrderLine{FoodID: foodID, Quantity: q})
		}
	}
	if !found && delta > 0 {
		out = append(out, model.FoodOrderLine{FoodID: foodID, Quantity: delta})
	}
	return out
}
