// Package pricing computes what a selection costs.  All functions are pure:
// they never fail, never mutate their inputs and may be called as often as
// the selection changes.  Amounts are whole VND; the only fractional value
// is a percentage discount, which is carried as an exact decimal until
// RoundVND is applied at the display boundary.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Subtotal is the undiscounted price of a selection.  Ids that were not
// found in the catalogs contributed nothing and are listed so the caller can
// warn about them.
type Subtotal struct {
	Seats          int64    `json:"seats"`
	Food           int64    `json:"food"`
	MissingSeatIDs []uint64 `json:"missingSeatIds,omitempty"`
	MissingFoodIDs []uint64 `json:"missingFoodIds,omitempty"`
}

// Amount is the seat subtotal plus the food subtotal.
func (s Subtotal) Amount() int64 { return s.Seats + s.Food }

// ComputeSubtotal prices the selected seats by their live tariff and the food
// lines by unit price times quantity.
func ComputeSubtotal(seatIDs []uint64, lines []model.FoodOrderLine, seats map[uint64]model.Seat, foods map[uint64]model.Food) Subtotal {
	var sub Subtotal
	for _, id := range seatIDs {
		seat, ok := seats[id]
		if !ok {
			sub.MissingSeatIDs = append(sub.MissingSeatIDs, id)
			continue
		}
		sub.Seats += seat.SeatType.Price
	}
	for _, l := range lines {
		food, ok := foods[l.FoodID]
		if !ok {
			sub.MissingFoodIDs = append(sub.MissingFoodIDs, l.FoodID)
			continue
		}
		sub.Food += food.Price * int64(l.Quantity)
	}
	return sub
}

// ComputeDiscount returns the reduction a voucher grants on subtotal.
//
// Percentage vouchers yield subtotal*pct/100, capped by DiscountMax when it
// is set.  Fixed vouchers yield DiscountAmount.  A voucher carrying both
// fields is priced as a percentage voucher.  The result is not clamped to
// subtotal; ComputeTotal floors the total at zero.
func ComputeDiscount(subtotal int64, v *model.Voucher) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	switch v.Mode() {
	case model.DiscountPercentage:
		raw := decimal.NewFromInt(subtotal).Mul(*v.DiscountPercentage).Div(hundred)
		if v.DiscountMax != nil {
			if limit := decimal.NewFromInt(*v.DiscountMax); raw.GreaterThan(limit) {
				return limit
			}
		}
		return raw
	case model.DiscountFixed:
		return decimal.NewFromInt(*v.DiscountAmount)
	}
	return decimal.Zero
}

// ComputeTotal is subtotal minus discount, never below zero.
func ComputeTotal(subtotal int64, discount decimal.Decimal) decimal.Decimal {
	total := decimal.NewFromInt(subtotal).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// RoundVND rounds an exact amount to whole VND, halves away from zero.
func RoundVND(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Quote is a priced selection ready to be shown to the customer.
type Quote struct {
	Subtotal Subtotal        `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`

	DiscountVND int64 `json:"discountVnd"`
	TotalVND    int64 `json:"totalVnd"`
}

// NewQuote prices a selection in one go.
func NewQuote(seatIDs []uint64, lines []model.FoodOrderLine, seats map[uint64]model.Seat, foods map[uint64]model.Food, v *model.Voucher) Quote {
	sub := ComputeSubtotal(seatIDs, lines, seats, foods)
	discount := ComputeDiscount(sub.Amount(), v)
	discountVND := RoundVND(discount)
	return Quote{
		Subtotal:    sub,
		Discount:    discount,
		Total:       ComputeTotal(sub.Amount(), discount),
		DiscountVND: discountVND,
		// derived from the rounded discount so the displayed lines add up
		TotalVND: ComputeTotal(sub.Amount(), decimal.NewFromInt(discountVND)).IntPart(),
	}
}
