package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// SeatsByAuditorium returns every seat of an auditorium.
func (cl *Client) SeatsByAuditorium(ctx context.Context, sess model.Session, auditoriumID uint64) ([]model.Seat, error) {
	var seats []model.Seat
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/admin/seats/auditorium/%d", auditoriumID), token: sess.Token}, &seats)
	return seats, err
}

// CreateSeats creates a row of seats.
func (cl *Client) CreateSeats(ctx context.Context, sess model.Session, req model.CreateSeatsRequest) ([]model.Seat, error) {
	var seats []model.Seat
	err := cl.do(ctx, call{method: http.MethodPost, path: "/admin/seats", token: sess.Token, body: req}, &seats)
	return seats, err
}

// UpdateSeatStatus activates or deactivates a seat.
func (cl *Client) UpdateSeatStatus(ctx context.Context, sess model.Session, seatID uint64, active bool) (model.Seat, error) {
	var s model.Seat
	err := cl.do(ctx, call{
		method: http.MethodPut,
		path:   fmt.Sprintf("/admin/seats/%d/status", seatID),
		token:  sess.Token,
		body:   map[string]bool{"status": active},
	}, &s)
	return s, err
}

// UpdateSeatType moves a seat to another tariff.
func (cl *Client) UpdateSeatType(ctx context.Context, sess model.Session, seatID, tariffID uint64) (model.Seat, error) {
	var s model.Seat
	err := cl.do(ctx, call{
		method: http.MethodPut,
		path:   fmt.Sprintf("/admin/seats/%d/type", seatID),
		query:  url.Values{"typeId": {strconv.FormatUint(tariffID, 10)}},
		token:  sess.Token,
	}, &s)
	return s, err
}

// DeleteSeat removes one seat.
func (cl *Client) DeleteSeat(ctx context.Context, sess model.Session, seatID uint64) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/admin/seats/%d", seatID), token: sess.Token}, nil)
}

// SeatTariffs returns every seat-type tariff.
func (cl *Client) SeatTariffs(ctx context.Context, sess model.Session) ([]model.SeatTariff, error) {
	var out []model.SeatTariff
	err := cl.do(ctx, call{method: http.MethodGet, path: "/admin/seat-prices", token: sess.Token}, &out)
	return out, err
}

// SeatTariff returns one tariff.
func (cl *Client) SeatTariff(ctx context.Context, sess model.Session, id uint64) (model.SeatTariff, error) {
	var out model.SeatTariff
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/admin/seat-prices/%d", id), token: sess.Token}, &out)
	return out, err
}

// CreateSeatTariff creates a tariff.
func (cl *Client) CreateSeatTariff(ctx context.Context, sess model.Session, req model.SeatTariffRequest) (model.SeatTariff, error) {
	var out model.SeatTariff
	err := cl.do(ctx, call{method: http.MethodPost, path: "/admin/seat-prices", token: sess.Token, body: req}, &out)
	return out, err
}

// UpdateSeatTariff changes the price of a tariff.
func (cl *Client) UpdateSeatTariff(ctx context.Context, sess model.Session, id uint64, req model.SeatTariffRequest) (model.SeatTariff, error) {
	var out model.SeatTariff
	err := cl.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/admin/seat-prices/%d", id), token: sess.Token, body: req}, &out)
	return out, err
}

// CreateVoucher creates a voucher.
func (cl *Client) CreateVoucher(ctx context.Context, sess model.Session, req model.VoucherRequest) (model.Voucher, error) {
	var out model.Voucher
	err := cl.do(ctx, call{method: http.MethodPost, path: "/admin/vouchers", token: sess.Token, body: req}, &out)
	return out, err
}

// UpdateVoucher replaces a voucher.
func (cl *Client) UpdateVoucher(ctx context.Context, sess model.Session, id uint64, req model.VoucherRequest) (model.Voucher, error) {
	var out model.Voucher
	err := cl.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/admin/vouchers/%d", id), token: sess.Token, body: req}, &out)
	return out, err
}
