package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// CreateBooking submits a finalized draft.  The idempotency key lets the
// backend recognise a repeated submission of the same draft.
func (cl *Client) CreateBooking(ctx context.Context, sess model.Session, req model.BookingRequest, idempotencyKey string) (model.Booking, error) {
	var b model.Booking
	c := call{
		method: http.MethodPost,
		path:   "/bookings",
		token:  sess.Token,
		body:   req,
	}
	if idempotencyKey != "" {
		c.headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	err := cl.do(ctx, c, &b)
	return b, err
}

// Booking returns one booking of the caller.
func (cl *Client) Booking(ctx context.Context, sess model.Session, id uint64) (model.Booking, error) {
	var b model.Booking
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/bookings/%d", id), token: sess.Token}, &b)
	return b, err
}

// MyBookings returns every booking of the caller.
func (cl *Client) MyBookings(ctx context.Context, sess model.Session) ([]model.Booking, error) {
	var out []model.Booking
	err := cl.do(ctx, call{method: http.MethodGet, path: "/bookings/me", token: sess.Token}, &out)
	return out, err
}

// Pay starts a payment for a booking.  Wallet payments answer with a URL the
// customer must visit; cash payments are settled at the counter.
func (cl *Client) Pay(ctx context.Context, sess model.Session, bookingID uint64, method model.PaymentMethod) (model.PaymentResult, error) {
	var res model.PaymentResult
	err := cl.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/booking/%d/%s", bookingID, method),
		token:  sess.Token,
	}, &res)
	return res, err
}
