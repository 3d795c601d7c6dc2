// Package service holds the application services behind the HTTP handlers:
// the checkout flow that builds, prices and submits drafts, the admin
// operations on seats, tariffs and vouchers, and the event publisher.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/draft"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/pricing"
	q "github.com/iliyamo/cinema-checkout/internal/queue"
	"github.com/iliyamo/cinema-checkout/internal/repository"
)

// CatalogReader loads the live reference data of a showtime.
type CatalogReader interface {
	FetchShowtimeCatalog(ctx context.Context, showtimeID uint64) (model.ShowtimeCatalog, error)
}

// BookingCreator creates bookings on the backend.
type BookingCreator interface {
	CreateBooking(ctx context.Context, sess model.Session, req model.BookingRequest, idempotencyKey string) (model.Booking, error)
}

// DraftStore persists drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, d *draft.Draft) error
	GetOwned(ctx context.Context, id, userID string) (*draft.Draft, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionLedger records every draft that reached the backend.
type SubmissionLedger interface {
	Create(ctx context.Context, rec *repository.SubmissionRecord) error
	MarkSucceeded(ctx context.Context, draftID string, bookingID uint64, bookingStatus string, total decimal.Decimal) error
	MarkFailed(ctx context.Context, draftID, message string) error
	GetByDraft(ctx context.Context, draftID string) (repository.SubmissionRecord, error)
}

// Locker provides exclusive locks shared by every gateway instance.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, name, token string) error
}

// EventPublisher publishes booking events.
type EventPublisher interface {
	PublishBookingSubmitted(ctx context.Context, event q.BookingSubmittedEvent) error
}

// CheckoutDeps are the collaborators of a CheckoutService.  Events may be
// nil, in which case nothing is published.
type CheckoutDeps struct {
	Catalog  CatalogReader
	Bookings BookingCreator
	Drafts   DraftStore
	Ledger   SubmissionLedger
	Locks    Locker
	Events   EventPublisher
	Log      *zap.Logger
	LockTTL  time.Duration
	Now      func() time.Time
}

// CheckoutService drives a draft from creation to submission.
type CheckoutService struct {
	catalog  CatalogReader
	bookings BookingCreator
	drafts   DraftStore
	ledger   SubmissionLedger
	locks    Locker
	events   EventPublisher
	log      *zap.Logger
	lockTTL  time.Duration
	now      func() time.Time

	inflight singleflight.Group
}

// NewCheckoutService wires a CheckoutService.
func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	s := &CheckoutService{
		catalog:  d.Catalog,
		bookings: d.Bookings,
		drafts:   d.Drafts,
		ledger:   d.Ledger,
		locks:    d.Locks,
		events:   d.Events,
		log:      d.Log,
		lockTTL:  d.LockTTL,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// DraftView is a draft together with its live quote.  Warnings list
// selections that no longer match the catalog.
type DraftView struct {
	Draft    *draft.Draft  `json:"draft"`
	Quote    pricing.Quote `json:"quote"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Catalog returns the live catalog of a showtime.  Vouchers that cannot be
// used right now are left out.
func (s *CheckoutService) Catalog(ctx context.Context, showtimeID uint64) (model.ShowtimeCatalog, error) {
	cat, err := s.catalog.FetchShowtimeCatalog(ctx, showtimeID)
	if err != nil {
		return model.ShowtimeCatalog{}, err
	}
	now := s.now()
	usable := cat.Vouchers[:0:0]
	for _, v := range cat.Vouchers {
		if v.Usable(now) {
			usable = append(usable, v)
		}
	}
	cat.Vouchers = usable
	return cat, nil
}

// CreateDraft starts a draft for the caller after checking that the
// showtime exists and belongs to the movie.
func (s *CheckoutService) CreateDraft(ctx context.Context, sess model.Session, showtimeID, movieID uint64) (DraftView, error) {
	d, err := draft.New(sess.UserID, showtimeID, movieID, s.now())
	if err != nil {
		return DraftView{}, err
	}
	cat, err := s.catalog.FetchShowtimeCatalog(ctx, showtimeID)
	if err != nil {
		return DraftView{}, err
	}
	if cat.Showtime.MovieID != 0 && cat.Showtime.MovieID != movieID {
		return DraftView{}, apperror.Validation("InvalidShowtime", "showtime %d does not belong to movie %d", showtimeID, movieID)
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return DraftView{}, err
	}
	s.log.Info("draft created", zap.String("draft_id", d.ID), zap.String("user_id", sess.UserID), zap.Uint64("showtime_id", showtimeID))
	return s.view(d, cat, nil), nil
}

// View returns a draft priced against the live catalog.
func (s *CheckoutService) View(ctx context.Context, sess model.Session, draftID string) (DraftView, error) {
	d, err := s.drafts.GetOwned(ctx, draftID, sess.UserID)
	if err != nil {
		return DraftView{}, err
	}
	cat, err := s.catalog.FetchShowtimeCatalog(ctx, d.ShowtimeID)
	if err != nil {
		return DraftView{}, err
	}
	return s.view(d, cat, nil), nil
}

// ToggleSeat selects or deselects a seat.  Selecting a seat that is
// unknown, inactive or already booked leaves the draft unchanged and adds
// a warning.
func (s *CheckoutService) ToggleSeat(ctx context.Context, sess model.Session, draftID string, seatID uint64) (DraftView, error) {
	return s.mutate(ctx, sess, draftID, func(d *draft.Draft, cat model.ShowtimeCatalog) ([]string, error) {
		if !d.Seats.Contains(seatID) {
			seat, ok := cat.SeatIndex()[seatID]
			if !ok || !seat.Selectable() {
				return []string{fmt.Sprintf("seat %d is not available", seatID)}, nil
			}
		}
		return nil, d.ToggleSeat(seatID, s.now())
	})
}

// AdjustFood changes the quantity of a food item by delta.  Adding an item
// missing from the menu is ignored with a warning.
func (s *CheckoutService) AdjustFood(ctx context.Context, sess model.Session, draftID string, foodID uint64, delta int) (DraftView, error) {
	return s.mutate(ctx, sess, draftID, func(d *draft.Draft, cat model.ShowtimeCatalog) ([]string, error) {
		if _, ok := cat.FoodIndex()[foodID]; !ok && delta > 0 {
			return []string{fmt.Sprintf("food %d is not on the menu", foodID)}, nil
		}
		return nil, d.AdjustFood(foodID, delta, s.now())
	})
}

// ApplyVoucher chooses a voucher from the live voucher list.
func (s *CheckoutService) ApplyVoucher(ctx context.Context, sess model.Session, draftID string, voucherID uint64) (DraftView, error) {
	return s.mutate(ctx, sess, draftID, func(d *draft.Draft, cat model.ShowtimeCatalog) ([]string, error) {
		v, ok := cat.Voucher(voucherID)
		if !ok {
			return nil, apperror.ErrVoucherUnknown
		}
		return nil, d.ApplyVoucher(v, s.now())
	})
}

// ClearVoucher removes the chosen voucher.
func (s *CheckoutService) ClearVoucher(ctx context.Context, sess model.Session, draftID string) (DraftView, error) {
	return s.mutate(ctx, sess, draftID, func(d *draft.Draft, _ model.ShowtimeCatalog) ([]string, error) {
		return nil, d.ClearVoucher(s.now())
	})
}

// Abandon discards a draft.  Nothing is sent to the backend.
func (s *CheckoutService) Abandon(ctx context.Context, sess model.Session, draftID string) error {
	if _, err := s.drafts.GetOwned(ctx, draftID, sess.UserID); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, draftID)
}

func (s *CheckoutService) mutate(ctx context.Context, sess model.Session, draftID string, fn func(*draft.Draft, model.ShowtimeCatalog) ([]string, error)) (DraftView, error) {
	d, err := s.drafts.GetOwned(ctx, draftID, sess.UserID)
	if err != nil {
		return DraftView{}, err
	}
	if d.Submitted() {
		return DraftView{}, draft.ErrSubmitted
	}
	cat, err := s.catalog.FetchShowtimeCatalog(ctx, d.ShowtimeID)
	if err != nil {
		return DraftView{}, err
	}
	warnings, err := fn(d, cat)
	if err != nil {
		return DraftView{}, err
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return DraftView{}, err
	}
	return s.view(d, cat, warnings), nil
}

// view prices d with live catalog data.  The voucher is re-read from the
// catalog; one that is gone or no longer usable is ignored with a warning.
func (s *CheckoutService) view(d *draft.Draft, cat model.ShowtimeCatalog, warnings []string) DraftView {
	var voucher *model.Voucher
	if d.Voucher != nil {
		live, ok := cat.Voucher(d.Voucher.ID)
		switch {
		case !ok:
			warnings = append(warnings, fmt.Sprintf("voucher %s is no longer offered", d.Voucher.Code))
		default:
			if err := draft.CheckVoucher(live, s.now()); err != nil {
				warnings = append(warnings, fmt.Sprintf("voucher %s: %v", live.Code, err))
			} else {
				voucher = &live
			}
		}
	}
	quote := pricing.NewQuote(d.Seats.IDs(), d.Foods, cat.SeatIndex(), cat.FoodIndex(), voucher)
	for _, id := range quote.Subtotal.MissingSeatIDs {
		warnings = append(warnings, fmt.Sprintf("seat %d is no longer in the seat map and is priced at 0", id))
	}
	for _, id := range quote.Subtotal.MissingFoodIDs {
		warnings = append(warnings, fmt.Sprintf("food %d is no longer on the menu and is priced at 0", id))
	}
	return DraftView{Draft: d, Quote: quote, Warnings: warnings}
}
