package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/draft"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/repository"
)

var (
	alice = model.Session{UserID: "42", Role: model.RoleUser, Token: "tok-a"}
	bob   = model.Session{UserID: "43", Role: model.RoleUser, Token: "tok-b"}
)

func filledDraft(t *testing.T, f *checkoutFixture) string {
	t.Helper()
	ctx := context.Background()
	v, err := f.svc.CreateDraft(ctx, alice, 3, 8)
	require.NoError(t, err)
	id := v.Draft.ID
	_, err = f.svc.ToggleSeat(ctx, alice, id, 1)
	require.NoError(t, err)
	_, err = f.svc.ToggleSeat(ctx, alice, id, 2)
	require.NoError(t, err)
	_, err = f.svc.AdjustFood(ctx, alice, id, 10, 2)
	require.NoError(t, err)
	return id
}

func TestCatalogHidesUnusableVouchers(t *testing.T) {
	f := newCheckoutFixture()
	cat, err := f.svc.Catalog(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, cat.Vouchers, 1)
	assert.Equal(t, "TEN", cat.Vouchers[0].Code)
}

func TestCreateDraftChecksMovie(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.svc.CreateDraft(context.Background(), alice, 3, 9)
	assert.True(t, apperror.IsValidation(err))

	v, err := f.svc.CreateDraft(context.Background(), alice, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, draft.StageShowtimeSelected, v.Draft.Stage)
	assert.True(t, f.drafts.has(v.Draft.ID))
}

func TestCreateDraftPropagatesBackendFailure(t *testing.T) {
	f := newCheckoutFixture()
	f.backend.catErr = &apperror.TransportError{Op: "GET /showtimes/3", Err: errors.New("refused")}
	_, err := f.svc.CreateDraft(context.Background(), alice, 3, 8)
	assert.True(t, apperror.IsTransport(err))
}

func TestToggleSeatSkipsUnavailableSeats(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	v, err := f.svc.CreateDraft(ctx, alice, 3, 8)
	require.NoError(t, err)

	for _, seatID := range []uint64{3, 4, 99} {
		got, err := f.svc.ToggleSeat(ctx, alice, v.Draft.ID, seatID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Draft.Seats.Len())
		assert.Len(t, got.Warnings, 1)
	}

	got, err := f.svc.ToggleSeat(ctx, alice, v.Draft.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, got.Draft.Seats.IDs())
	assert.Equal(t, int64(90000), got.Quote.TotalVND)

	got, err = f.svc.ToggleSeat(ctx, alice, v.Draft.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Draft.Seats.Len())
}

func TestViewPricesAgainstLiveCatalog(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)

	v, err := f.svc.ApplyVoucher(ctx, alice, id, 5)
	require.NoError(t, err)
	// 90000 + 120000 + 2*50000 = 310000, 10% off
	assert.Equal(t, int64(310000), v.Quote.Subtotal.Amount())
	assert.Equal(t, int64(31000), v.Quote.DiscountVND)
	assert.Equal(t, int64(279000), v.Quote.TotalVND)
	assert.Equal(t, draft.StageVoucherApplied, v.Draft.Stage)

	// voucher withdrawn after it was applied
	f.backend.mu.Lock()
	f.backend.catalog.Vouchers = nil
	f.backend.mu.Unlock()
	v, err = f.svc.View(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, int64(310000), v.Quote.TotalVND)
	assert.Len(t, v.Warnings, 1)
}

func TestApplyVoucherRejections(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)

	_, err := f.svc.ApplyVoucher(ctx, alice, id, 77)
	assert.ErrorIs(t, err, apperror.ErrVoucherUnknown)
	_, err = f.svc.ApplyVoucher(ctx, alice, id, 6)
	assert.ErrorIs(t, err, apperror.ErrVoucherExpired)

	v, err := f.svc.ClearVoucher(ctx, alice, id)
	require.NoError(t, err)
	assert.Nil(t, v.Draft.Voucher)
}

func TestAdjustFoodIgnoresUnknownItems(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)

	v, err := f.svc.AdjustFood(ctx, alice, id, 11, 1)
	require.NoError(t, err)
	assert.Len(t, v.Draft.Foods, 1)
	assert.NotEmpty(t, v.Warnings)

	v, err = f.svc.AdjustFood(ctx, alice, id, 10, -5)
	require.NoError(t, err)
	assert.Empty(t, v.Draft.Foods)
}

func TestDraftsAreOwned(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)

	_, err := f.svc.View(ctx, bob, id)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = f.svc.Submit(ctx, bob, id)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.ErrorIs(t, f.svc.Abandon(ctx, bob, id), repository.ErrForbidden)
	assert.Zero(t, f.backend.calls.Load())
}

func TestAbandonDeletesDraft(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)

	require.NoError(t, f.svc.Abandon(ctx, alice, id))
	assert.False(t, f.drafts.has(id))
	_, err := f.svc.View(ctx, alice, id)
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestSubmitCreatesBookingOnce(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	d, err := f.drafts.GetOwned(ctx, id, alice.UserID)
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), res.BookingID)
	assert.Equal(t, "/payment?bookingId=101", res.Next)
	assert.False(t, res.Replayed)

	assert.Equal(t, d.IdempotencyKey, f.backend.lastKey)
	assert.Equal(t, []uint64{1, 2}, f.backend.lastReq.SeatIDs)
	assert.False(t, f.drafts.has(id))

	rec, err := f.ledger.GetByDraft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, repository.SubmissionSucceeded, rec.Status)
	assert.Equal(t, Fingerprint(f.backend.lastReq), rec.Fingerprint)
	assert.Equal(t, testNow, rec.CreatedAt)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, uint64(101), f.events.events[0].BookingID)
	assert.Equal(t, int64(310000), f.events.events[0].QuotedTotal)

	again, err := f.svc.Submit(ctx, alice, id)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, res.BookingID, again.BookingID)
	assert.Equal(t, int32(1), f.backend.calls.Load())
}

func TestSubmitConcurrentCallsShareOneBooking(t *testing.T) {
	f := newCheckoutFixture()
	f.backend.delay = 20 * time.Millisecond
	id := filledDraft(t, f)

	var wg sync.WaitGroup
	results := make([]SubmitResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.svc.Submit(context.Background(), alice, id)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, uint64(101), results[i].BookingID)
	}
	assert.Equal(t, int32(1), f.backend.calls.Load())
}

func TestSubmitLocalFailureKeepsDraft(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	v, err := f.svc.CreateDraft(ctx, alice, 3, 8)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, alice, v.Draft.ID)
	assert.ErrorIs(t, err, apperror.ErrEmptySeatSelection)
	assert.True(t, f.drafts.has(v.Draft.ID))
	assert.Zero(t, f.backend.calls.Load())
	_, err = f.ledger.GetByDraft(ctx, v.Draft.ID)
	assert.ErrorIs(t, err, repository.ErrSubmissionNotFound)
}

func TestSubmitRejectsVoucherExpiredSinceApplied(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	_, err := f.svc.ApplyVoucher(ctx, alice, id, 5)
	require.NoError(t, err)

	f.backend.mu.Lock()
	f.backend.catalog.Vouchers[0].Active = false
	f.backend.mu.Unlock()

	_, err = f.svc.Submit(ctx, alice, id)
	assert.ErrorIs(t, err, apperror.ErrVoucherInactive)
	assert.True(t, f.drafts.has(id))
	assert.Zero(t, f.backend.calls.Load())
}

func TestSubmitBackendRejectionClearsDraft(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	f.backend.bookErr = &apperror.ConflictError{Message: "seat A1 already booked"}

	_, err := f.svc.Submit(ctx, alice, id)
	assert.True(t, apperror.IsConflict(err))
	assert.False(t, f.drafts.has(id))

	rec, err := f.ledger.GetByDraft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, repository.SubmissionFailed, rec.Status)
	assert.Equal(t, "seat A1 already booked", rec.ErrorMessage)
	assert.Empty(t, f.events.events)

	_, err = f.svc.Submit(ctx, alice, id)
	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "seat A1 already booked", conflict.Message)
	assert.Equal(t, int32(1), f.backend.calls.Load())
}

func TestSubmitRecordsUpstreamMessageWithoutPrefix(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	f.backend.bookErr = &apperror.UpstreamError{Status: 400, Message: "Ghế đã được đặt"}

	_, err := f.svc.Submit(ctx, alice, id)
	require.True(t, apperror.IsUpstream(err))

	rec, err := f.ledger.GetByDraft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ghế đã được đặt", rec.ErrorMessage)
}

func TestReplayOfPendingSubmission(t *testing.T) {
	cases := []struct {
		name    string
		created time.Time
		want    error
	}{
		{"recent row is in flight", testNow.Add(-5 * time.Second), ErrSubmissionInFlight},
		{"row older than the lock is unknown", testNow.Add(-2 * time.Minute), ErrSubmissionUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture()
			f.ledger.put(repository.SubmissionRecord{
				DraftID:   "d-crashed",
				UserID:    alice.UserID,
				Status:    repository.SubmissionPending,
				CreatedAt: tc.created,
			})

			_, err := f.svc.Submit(context.Background(), alice, "d-crashed")
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, f.backend.calls.Load())
		})
	}
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	f := newCheckoutFixture()
	id := filledDraft(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.Submit(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), res.BookingID)
}

func TestSubmitTransportFailureClearsDraft(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	f.backend.bookErr = &apperror.TransportError{Op: "POST /booking", Err: errors.New("timeout")}

	_, err := f.svc.Submit(ctx, alice, id)
	assert.True(t, apperror.IsTransport(err))
	assert.False(t, f.drafts.has(id))
}

func TestSubmitHeldLockIsInFlight(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	id := filledDraft(t, f)
	_, ok, _ := f.locks.Acquire(ctx, "submit:"+id, 0)
	require.True(t, ok)

	_, err := f.svc.Submit(ctx, alice, id)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.True(t, f.drafts.has(id))
	assert.Zero(t, f.backend.calls.Load())
}

func TestSubmitUnknownDraft(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.svc.Submit(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestPublishFailureDoesNotFailSubmit(t *testing.T) {
	f := newCheckoutFixture()
	f.events.err = errors.New("broker down")
	id := filledDraft(t, f)

	res, err := f.svc.Submit(context.Background(), alice, id)
	require.NoError(t, err)
	assert.NotZero(t, res.BookingID)
}

func TestFingerprintIsStable(t *testing.T) {
	req := model.BookingRequest{ShowtimeID: 3, SeatIDs: []uint64{1, 2}}
	assert.Equal(t, Fingerprint(req), Fingerprint(req))
	assert.Len(t, Fingerprint(req), 64)
	req.SeatIDs = []uint64{1}
	assert.NotEqual(t, Fingerprint(model.BookingRequest{ShowtimeID: 3, SeatIDs: []uint64{1, 2}}), Fingerprint(req))
}
