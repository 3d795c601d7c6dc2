package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/draft"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/pricing"
	q "github.com/iliyamo/cinema-checkout/internal/queue"
	"github.com/iliyamo/cinema-checkout/internal/repository"
)

// ErrSubmissionInFlight is returned while another request is submitting the
// same draft.
var ErrSubmissionInFlight = &apperror.ConflictError{Message: "draft is being submitted"}

// ErrSubmissionUnknown is returned for a submission whose outcome was never
// recorded, e.g. after a crash mid-call.  The customer's booking list is the
// place to check whether a booking exists.
var ErrSubmissionUnknown = &apperror.ConflictError{Message: "outcome of the earlier submission is unknown, check your bookings"}

// SubmitResult is what the customer receives after a submission.  Next is
// the path of the payment step.
type SubmitResult struct {
	BookingID uint64              `json:"bookingId"`
	Total     decimal.Decimal     `json:"total"`
	Status    model.BookingStatus `json:"status"`
	Next      string              `json:"next"`
	Replayed  bool                `json:"replayed,omitempty"`
}

func newSubmitResult(bookingID uint64, total decimal.Decimal, status model.BookingStatus, replayed bool) SubmitResult {
	return SubmitResult{
		BookingID: bookingID,
		Total:     total,
		Status:    status,
		Next:      fmt.Sprintf("/payment?bookingId=%d", bookingID),
		Replayed:  replayed,
	}
}

// Fingerprint hashes a booking request so a ledger row shows exactly what
// was sent.
func Fingerprint(req model.BookingRequest) string {
	b, _ := json.Marshal(req)
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Submit sends a draft to the backend at most once.
//
// Concurrent calls for the same draft in this process share one execution;
// across processes a Redis lock and the unique ledger row keep a second
// submission from reaching the backend.  Once the backend has been
// contacted the draft is deleted whatever the outcome, and later calls
// replay the recorded result.
func (s *CheckoutService) Submit(ctx context.Context, sess model.Session, draftID string) (SubmitResult, error) {
	v, err, _ := s.inflight.Do(sess.UserID+":"+draftID, func() (any, error) {
		// joined callers must not inherit the first caller's cancellation
		return s.submit(context.WithoutCancel(ctx), sess, draftID)
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return v.(SubmitResult), nil
}

func (s *CheckoutService) submit(ctx context.Context, sess model.Session, draftID string) (SubmitResult, error) {
	d, err := s.drafts.GetOwned(ctx, draftID, sess.UserID)
	if errors.Is(err, repository.ErrDraftNotFound) {
		return s.replay(ctx, sess, draftID)
	}
	if err != nil {
		return SubmitResult{}, err
	}
	if d.Submitted() {
		return s.replay(ctx, sess, draftID)
	}

	// local checks; a failure here keeps the draft so it can be fixed
	req, err := d.Finalize()
	if err != nil {
		return SubmitResult{}, err
	}
	cat, err := s.catalog.FetchShowtimeCatalog(ctx, d.ShowtimeID)
	if err != nil {
		return SubmitResult{}, err
	}
	var voucher *model.Voucher
	if d.Voucher != nil {
		live, ok := cat.Voucher(d.Voucher.ID)
		if !ok {
			return SubmitResult{}, apperror.ErrVoucherUnknown
		}
		if err := draft.CheckVoucher(live, s.now()); err != nil {
			return SubmitResult{}, err
		}
		voucher = &live
	}
	quote := pricing.NewQuote(req.SeatIDs, req.Orders, cat.SeatIndex(), cat.FoodIndex(), voucher)

	lockName := "submit:" + d.ID
	token, ok, err := s.locks.Acquire(ctx, lockName, s.lockTTL)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		return SubmitResult{}, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), lockName, token); err != nil {
			s.log.Warn("submit: release lock failed", zap.String("draft_id", d.ID), zap.Error(err))
		}
	}()

	rec := &repository.SubmissionRecord{
		DraftID:        d.ID,
		IdempotencyKey: d.IdempotencyKey,
		UserID:         sess.UserID,
		ShowtimeID:     d.ShowtimeID,
		Fingerprint:    Fingerprint(req),
		CreatedAt:      s.now(),
	}
	if err := s.ledger.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.replay(ctx, sess, d.ID)
		}
		return SubmitResult{}, err
	}

	if err := d.MarkSubmitted(s.now()); err != nil {
		return SubmitResult{}, err
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		s.log.Warn("submit: save submitted draft failed", zap.String("draft_id", d.ID), zap.Error(err))
	}

	booking, callErr := s.bookings.CreateBooking(ctx, sess, req, d.IdempotencyKey)

	// the backend was contacted: the draft is spent
	bg := context.WithoutCancel(ctx)
	if err := s.drafts.Delete(bg, d.ID); err != nil {
		s.log.Warn("submit: delete draft failed", zap.String("draft_id", d.ID), zap.Error(err))
	}

	if callErr != nil {
		if err := s.ledger.MarkFailed(bg, d.ID, apperror.MessageOf(callErr)); err != nil {
			s.log.Error("submit: record failure failed", zap.String("draft_id", d.ID), zap.Error(err))
		}
		s.log.Info("submit: backend rejected draft", zap.String("draft_id", d.ID), zap.Error(callErr))
		return SubmitResult{}, callErr
	}

	if err := s.ledger.MarkSucceeded(bg, d.ID, booking.ID, string(booking.Status), booking.Total); err != nil {
		s.log.Error("submit: record success failed", zap.String("draft_id", d.ID), zap.Uint64("booking_id", booking.ID), zap.Error(err))
	}
	if !booking.Total.Equal(decimal.NewFromInt(quote.TotalVND)) {
		s.log.Info("submit: backend total differs from quote",
			zap.String("draft_id", d.ID), zap.Int64("quoted", quote.TotalVND), zap.String("backend", booking.Total.String()))
	}
	s.publish(bg, sess, d, req, quote, booking)

	s.log.Info("booking submitted", zap.String("draft_id", d.ID), zap.Uint64("booking_id", booking.ID), zap.String("user_id", sess.UserID))
	return newSubmitResult(booking.ID, booking.Total, booking.Status, false), nil
}

// replay answers a submission of a draft that already reached the backend.
func (s *CheckoutService) replay(ctx context.Context, sess model.Session, draftID string) (SubmitResult, error) {
	rec, err := s.ledger.GetByDraft(ctx, draftID)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		return SubmitResult{}, repository.ErrDraftNotFound
	}
	if err != nil {
		return SubmitResult{}, err
	}
	if rec.UserID != sess.UserID {
		return SubmitResult{}, repository.ErrForbidden
	}
	switch rec.Status {
	case repository.SubmissionSucceeded:
		return newSubmitResult(uint64(rec.BookingID.Int64), rec.Total.Decimal, model.BookingStatus(rec.BookingStatus), true), nil
	case repository.SubmissionFailed:
		return SubmitResult{}, &apperror.ConflictError{Message: rec.ErrorMessage}
	default:
		// a PENDING row outliving the submit lock has no live submitter
		if s.now().Sub(rec.CreatedAt) > s.lockTTL {
			return SubmitResult{}, ErrSubmissionUnknown
		}
		return SubmitResult{}, ErrSubmissionInFlight
	}
}

func (s *CheckoutService) publish(ctx context.Context, sess model.Session, d *draft.Draft, req model.BookingRequest, quote pricing.Quote, b model.Booking) {
	if s.events == nil {
		return
	}
	ev := q.BookingSubmittedEvent{
		BookingID:      b.ID,
		DraftID:        d.ID,
		IdempotencyKey: d.IdempotencyKey,
		UserID:         sess.UserID,
		ShowtimeID:     d.ShowtimeID,
		MovieID:        d.MovieID,
		SeatIDs:        req.SeatIDs,
		FoodLines:      len(req.Orders),
		QuotedTotal:    quote.TotalVND,
		BackendTotal:   b.Total.String(),
		Status:         string(b.Status),
		SubmittedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if d.Voucher != nil {
		ev.VoucherCode = d.Voucher.Code
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.events.PublishBookingSubmitted(pctx, ev); err != nil {
		s.log.Warn("submit: publish booking event failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}
