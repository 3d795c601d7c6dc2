package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// VoucherRequest creates or updates a voucher.  Exactly one of
// DiscountAmount and DiscountPercentage must be present; presence, not the
// value, is what counts, so a zero amount is a valid fixed voucher.
type VoucherRequest struct {
	Code               string           `json:"code" validate:"required,max=50"`
	DiscountAmount     *int64           `json:"discountAmount,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	DiscountMax        *int64           `json:"discountMax,omitempty" validate:"omitempty,gte=0"`
	ExpiryDate         Timestamp        `json:"expiryDate"`
	Active             bool             `json:"active"`
}

// MarshalJSON writes the percentage as a JSON number, as the backend
// expects, whatever the process wide decimal settings are.
func (r VoucherRequest) MarshalJSON() ([]byte, error) {
	type plain VoucherRequest
	out := struct {
		plain
		DiscountPercentage json.Number `json:"discountPercentage,omitempty"`
	}{plain: plain(r)}
	if r.DiscountPercentage != nil {
		out.DiscountPercentage = json.Number(r.DiscountPercentage.String())
	}
	return json.Marshal(out)
}

// SeatTariffRequest creates a tariff or updates its price.
type SeatTariffRequest struct {
	SeatType SeatType `json:"seatType" validate:"required,seattype"`
	Price    int64    `json:"price" validate:"gt=0"`
}

// MaxSeatsPerRow bounds seat numbers and the width of one bulk creation.
const MaxSeatsPerRow = 200

// BulkSeatRequest asks for one row of seats numbered FromSeat..ToSeat.
type BulkSeatRequest struct {
	AuditoriumID uint64 `json:"auditoriumId" validate:"required"`
	RowChart     string `json:"rowChart" validate:"required,rowlabel"`
	FromSeat     int    `json:"fromSeat" validate:"gt=0,lte=200"`
	ToSeat       int    `json:"toSeat" validate:"gt=0,lte=200"`
	SeatPriceID  uint64 `json:"seatPriceId" validate:"required"`
}

// MaxSeatBatch bounds how many seats one batch edit may touch.
const MaxSeatBatch = 500

// SeatBatchRequest selects seats for a batch edit.  TypeID is only read by
// the type change.
type SeatBatchRequest struct {
	SeatIDs []uint64 `json:"seatIds" validate:"required,min=1,max=500,dive,gt=0"`
	TypeID  uint64   `json:"typeId,omitempty"`
}

// CreateSeatsRequest is the backend payload for bulk seat creation.
type CreateSeatsRequest struct {
	AuditoriumID uint64 `json:"auditoriumId"`
	RowChart     string `json:"rowChart"`
	SeatNumbers  []int  `json:"seatNumbers"`
	SeatPriceID  uint64 `json:"seatPriceId"`
}

// Expand turns the range into the backend payload.  The range is inclusive;
// an empty or reversed range yields no seat numbers.
func (r BulkSeatRequest) Expand() CreateSeatsRequest {
	var nums []int
	if r.ToSeat >= r.FromSeat {
		nums = make([]int, 0, min(r.ToSeat-r.FromSeat+1, MaxSeatsPerRow))
	}
	for n := r.FromSeat; n <= r.ToSeat; n++ {
		nums = append(nums, n)
	}
	return CreateSeatsRequest{
		AuditoriumID: r.AuditoriumID,
		RowChart:     r.RowChart,
		SeatNumbers:  nums,
		SeatPriceID:  r.SeatPriceID,
	}
}
