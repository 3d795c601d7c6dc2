package selection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

func TestToggleSeatAddsAndRemoves(t *testing.T) {
	empty := SeatSet{}
	one := ToggleSeat(empty, 5)
	assert.True(t, one.Contains(5))
	assert.Equal(t, 0, empty.Len(), "input must not change")

	two := ToggleSeat(one, 3)
	assert.Equal(t, []uint64{3, 5}, two.IDs())

	back := ToggleSeat(two, 5)
	assert.Equal(t, []uint64{3}, back.IDs())
	assert.Equal(t, []uint64{3, 5}, two.IDs(), "input must not change")
}

func TestToggleSeatTwiceIsIdentity(t *testing.T) {
	for _, start := range []SeatSet{{}, NewSeatSet(1, 2, 3), NewSeatSet(9)} {
		for _, id := range []uint64{1, 4, 9} {
			got := ToggleSeat(ToggleSeat(start, id), id)
			assert.Equal(t, start.IDs(), got.IDs())
		}
	}
}

func TestNewSeatSetCollapsesDuplicates(t *testing.T) {
	s := NewSeatSet(4, 4, 2, 4)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []uint64{2, 4}, s.IDs())
}

func TestSeatSetJSON(t *testing.T) {
	b, err := json.Marshal(NewSeatSet(7, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,7]`, string(b))

	var s SeatSet
	require.NoError(t, json.Unmarshal([]byte(`[3,3,8]`), &s))
	assert.Equal(t, []uint64{3, 8}, s.IDs())
}

func TestAdjustFoodQuantity(t *testing.T) {
	tests := []struct {
		name  string
		lines []model.FoodOrderLine
		food  uint64
		delta int
		want  []model.FoodOrderLine
	}{
		{
			name:  "new line from positive delta",
			food:  1,
			delta: 2,
			want:  []model.FoodOrderLine{{FoodID: 1, Quantity: 2}},
		},
		{
			name:  "negative delta on missing line is ignored",
			lines: []model.FoodOrderLine{{FoodID: 2, Quantity: 1}},
			food:  1,
			delta: -1,
			want:  []model.FoodOrderLine{{FoodID: 2, Quantity: 1}},
		},
		{
			name:  "zero delta on missing line is ignored",
			food:  1,
			delta: 0,
			want:  []model.FoodOrderLine{},
		},
		{
			name:  "increment existing line",
			lines: []model.FoodOrderLine{{FoodID: 1, Quantity: 1}, {FoodID: 2, Quantity: 3}},
			food:  2,
			delta: 1,
			want:  []model.FoodOrderLine{{FoodID: 1, Quantity: 1}, {FoodID: 2, Quantity: 4}},
		},
		{
			name:  "dropping to zero removes the line",
			lines: []model.FoodOrderLine{{FoodID: 1, Quantity: 1}, {FoodID: 2, Quantity: 3}},
			food:  1,
			delta: -1,
			want:  []model.FoodOrderLine{{FoodID: 2, Quantity: 3}},
		},
		{
			name:  "dropping below zero removes the line",
			lines: []model.FoodOrderLine{{FoodID: 1, Quantity: 2}},
			food:  1,
			delta: -5,
			want:  []model.FoodOrderLine{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := append([]model.FoodOrderLine(nil), tc.lines...)
			got := AdjustFoodQuantity(tc.lines, tc.food, tc.delta)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, before, tc.lines, "input must not change")
			for _, l := range got {
				assert.Greater(t, l.Quantity, 0)
			}
		})
	}
}
