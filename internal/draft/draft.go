// Package draft holds the not yet submitted booking of one customer for one
// showtime.  A Draft moves through the stages
//
//	ShowtimeSelected → SeatsSelected → FoodChosen → VoucherApplied → Submitted
//
// as its content grows; Submitted is terminal and rejects every mutation.
package draft

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/selection"
)

// Stage is the position of a draft in the checkout flow.
type Stage string

const (
	StageShowtimeSelected Stage = "SHOWTIME_SELECTED"
	StageSeatsSelected    Stage = "SEATS_SELECTED"
	StageFoodChosen       Stage = "FOOD_CHOSEN"
	StageVoucherApplied   Stage = "VOUCHER_APPLIED"
	StageSubmitted        Stage = "SUBMITTED"
)

// ErrSubmitted is returned by every mutation of a submitted draft.
var ErrSubmitted = errors.New("draft already submitted")

// Draft is a customer's booking in progress.
//
// IdempotencyKey is generated once when the draft is created and travels
// with the one booking request the draft may produce.
type Draft struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	ShowtimeID     uint64                `json:"showtimeId"`
	MovieID        uint64                `json:"movieId"`
	Seats          selection.SeatSet     `json:"seats"`
	Foods          []model.FoodOrderLine `json:"foods"`
	Voucher        *model.Voucher        `json:"voucher,omitempty"`
	IdempotencyKey string                `json:"idempotencyKey"`
	Stage          Stage                 `json:"stage"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// New starts a draft for a showtime of a movie.
func New(userID string, showtimeID, movieID uint64, now time.Time) (*Draft, error) {
	if showtimeID == 0 || movieID == 0 {
		return nil, apperror.ErrInvalidShowtime
	}
	now = now.UTC()
	return &Draft{
		ID:             uuid.NewString(),
		UserID:         userID,
		ShowtimeID:     showtimeID,
		MovieID:        movieID,
		Seats:          selection.NewSeatSet(),
		Foods:          []model.FoodOrderLine{},
		IdempotencyKey: uuid.NewString(),
		Stage:          StageShowtimeSelected,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Submitted reports whether the draft reached its terminal stage.
func (d *Draft) Submitted() bool { return d.Stage == StageSubmitted }

// ToggleSeat adds or removes a seat.  Availability is the caller's concern.
func (d *Draft) ToggleSeat(seatID uint64, now time.Time) error {
	if d.Submitted() {
		return ErrSubmitted
	}
	d.Seats = selection.ToggleSeat(d.Seats, seatID)
	d.touch(now)
	return nil
}

// AdjustFood changes the quantity of a food line by delta.
func (d *Draft) AdjustFood(foodID uint64, delta int, now time.Time) error {
	if d.Submitted() {
		return ErrSubmitted
	}
	d.Foods = selection.AdjustFoodQuantity(d.Foods, foodID, delta)
	d.touch(now)
	return nil
}

// ApplyVoucher chooses v for the draft.  Inactive, expired and malformed
// vouchers are rejected and the previous choice is kept.
func (d *Draft) ApplyVoucher(v model.Voucher, now time.Time) error {
	if d.Submitted() {
		return ErrSubmitted
	}
	if err := CheckVoucher(v, now); err != nil {
		return err
	}
	d.Voucher = &v
	d.touch(now)
	return nil
}

// ClearVoucher removes the chosen voucher, if any.
func (d *Draft) ClearVoucher(now time.Time) error {
	if d.Submitted() {
		return ErrSubmitted
	}
	d.Voucher = nil
	d.touch(now)
	return nil
}

// CheckVoucher tells why v cannot be used at now, or returns nil.
func CheckVoucher(v model.Voucher, now time.Time) error {
	switch {
	case !v.Active:
		return apperror.ErrVoucherInactive
	case v.Expired(now):
		return apperror.ErrVoucherExpired
	case v.Mode() == model.DiscountInvalid:
		return apperror.ErrVoucherMalformed
	}
	return nil
}

// Finalize freezes the draft into the request sent to the backend.  The
// returned value shares no memory with the draft.
func (d *Draft) Finalize() (model.BookingRequest, error) {
	if d.Submitted() {
		return model.BookingRequest{}, ErrSubmitted
	}
	if d.ShowtimeID == 0 || d.MovieID == 0 {
		return model.BookingRequest{}, apperror.ErrInvalidShowtime
	}
	if d.Seats.Len() == 0 {
		return model.BookingRequest{}, apperror.ErrEmptySeatSelection
	}
	req := model.BookingRequest{
		ShowtimeID: d.ShowtimeID,
		SeatIDs:    d.Seats.IDs(),
		Orders:     append([]model.FoodOrderLine{}, d.Foods...),
	}
	if d.Voucher != nil {
		id := d.Voucher.ID
		req.VoucherID = &id
	}
	return req, nil
}

// MarkSubmitted moves the draft to its terminal stage.
func (d *Draft) MarkSubmitted(now time.Time) error {
	if d.Submitted() {
		return ErrSubmitted
	}
	d.Stage = StageSubmitted
	d.UpdatedAt = now.UTC()
	return nil
}

// touch records a mutation and recomputes the stage from the content.
func (d *Draft) touch(now time.Time) {
	d.UpdatedAt = now.UTC()
	switch {
	case d.Voucher != nil:
		d.Stage = StageVoucherApplied
	case len(d.Foods) > 0:
		d.Stage = StageFoodChosen
	case d.Seats.Len() > 0:
		d.Stage = StageSeatsSelected
	default:
		d.Stage = StageShowtimeSelected
	}
}
