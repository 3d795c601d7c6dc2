package client

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// SeatsByShowtime returns the seat map of a showtime with booked flags.
func (cl *Client) SeatsByShowtime(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	var seats []model.Seat
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/seats/showtime/%d", showtimeID)}, &seats)
	return seats, err
}

// Foods returns the food menu.
func (cl *Client) Foods(ctx context.Context) ([]model.Food, error) {
	var foods []model.Food
	err := cl.do(ctx, call{method: http.MethodGet, path: "/foods"}, &foods)
	return foods, err
}

// Vouchers returns the public voucher list.  Records carrying neither
// discount field are dropped; records carrying both are kept and will be
// priced as percentage vouchers.  Both cases are logged.
func (cl *Client) Vouchers(ctx context.Context) ([]model.Voucher, error) {
	var raw []model.Voucher
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/vouchers"}, &raw); err != nil {
		return nil, err
	}
	return cl.sanitizeVouchers(raw), nil
}

func (cl *Client) sanitizeVouchers(raw []model.Voucher) []model.Voucher {
	out := make([]model.Voucher, 0, len(raw))
	for _, v := range raw {
		switch {
		case v.Mode() == model.DiscountInvalid:
			cl.log.Warn("dropping voucher without discount", zap.Uint64("voucher_id", v.ID), zap.String("code", v.Code))
			continue
		case v.Ambiguous():
			cl.log.Warn("voucher has both discount fields, pricing as percentage", zap.Uint64("voucher_id", v.ID), zap.String("code", v.Code))
		}
		out = append(out, v)
	}
	return out
}

// Showtime returns one showtime.
func (cl *Client) Showtime(ctx context.Context, id uint64) (model.Showtime, error) {
	var st model.Showtime
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/showtime/%d", id)}, &st)
	return st, err
}

// Movie returns one movie.
func (cl *Client) Movie(ctx context.Context, id uint64) (model.Movie, error) {
	var m model.Movie
	err := cl.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/movies/%d", id)}, &m)
	return m, err
}

// FetchShowtimeCatalog loads the showtime, its seat map, the food menu and
// the voucher list concurrently; the movie is read as soon as the showtime
// names it.  The first failure cancels the other reads and is returned.
func (cl *Client) FetchShowtimeCatalog(ctx context.Context, showtimeID uint64) (model.ShowtimeCatalog, error) {
	var cat model.ShowtimeCatalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cat.Showtime, err = cl.Showtime(gctx, showtimeID)
		if err != nil || cat.Showtime.MovieID == 0 {
			return err
		}
		cat.Movie, err = cl.Movie(gctx, cat.Showtime.MovieID)
		return err
	})
	g.Go(func() (err error) {
		cat.Seats, err = cl.SeatsByShowtime(gctx, showtimeID)
		return err
	})
	g.Go(func() (err error) {
		cat.Foods, err = cl.Foods(gctx)
		return err
	})
	g.Go(func() (err error) {
		cat.Vouchers, err = cl.Vouchers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ShowtimeCatalog{}, err
	}
	return cat, nil
}
