package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/draft"
	"github.com/iliyamo/cinema-checkout/internal/model"
	q "github.com/iliyamo/cinema-checkout/internal/queue"
	"github.com/iliyamo/cinema-checkout/internal/repository"
)

var testNow = time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)

func i64(v int64) *int64 { return &v }

func testCatalog() model.ShowtimeCatalog {
	normal := model.SeatTariff{ID: 1, SeatType: model.SeatTypeNormal, Price: 90000}
	vip := model.SeatTariff{ID: 2, SeatType: model.SeatTypeVIP, Price: 120000}
	pct := decimal.NewFromInt(10)
	return model.ShowtimeCatalog{
		Showtime: model.Showtime{ID: 3, MovieID: 8, AuditoriumID: 1},
		Seats: []model.Seat{
			{ID: 1, RowChart: "A", SeatNumber: "1", Active: true, SeatType: normal},
			{ID: 2, RowChart: "A", SeatNumber: "2", Active: true, SeatType: vip},
			{ID: 3, RowChart: "A", SeatNumber: "3", Active: true, Booked: true, SeatType: normal},
			{ID: 4, RowChart: "A", SeatNumber: "4", Active: false, SeatType: normal},
		},
		Foods: []model.Food{{ID: 10, Name: "Popcorn", Price: 50000}},
		Vouchers: []model.Voucher{
			{ID: 5, Code: "TEN", DiscountPercentage: &pct, Active: true, ExpiryDate: model.Timestamp{Time: testNow.Add(24 * time.Hour)}},
			{ID: 6, Code: "OLD", DiscountAmount: i64(20000), Active: true, ExpiryDate: model.Timestamp{Time: testNow.Add(-time.Hour)}},
		},
	}
}

// fakeBackend serves a fixed catalog and counts booking calls.
type fakeBackend struct {
	mu       sync.Mutex
	catalog  model.ShowtimeCatalog
	catErr   error
	bookErr  error
	delay    time.Duration
	calls    atomic.Int32
	lastKey  string
	lastReq  model.BookingRequest
	nextID   uint64
	bookings map[uint64]model.Booking
	paid     []uint64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{catalog: testCatalog(), nextID: 100, bookings: map[uint64]model.Booking{}}
}

func (f *fakeBackend) FetchShowtimeCatalog(_ context.Context, _ uint64) (model.ShowtimeCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalog, f.catErr
}

func (f *fakeBackend) CreateBooking(ctx context.Context, _ model.Session, req model.BookingRequest, key string) (model.Booking, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := ctx.Err(); err != nil {
		return model.Booking{}, &apperror.TransportError{Op: "POST /bookings", Err: err}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = key
	f.lastReq = req
	if f.bookErr != nil {
		return model.Booking{}, f.bookErr
	}
	f.nextID++
	b := model.Booking{ID: f.nextID, Total: decimal.NewFromInt(252000), Status: model.BookingPending}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBackend) Booking(_ context.Context, _ model.Session, id uint64) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, &apperror.UpstreamError{Status: 404, Message: "booking not found"}
	}
	return b, nil
}

func (f *fakeBackend) MyBookings(_ context.Context, _ model.Session) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBackend) Pay(_ context.Context, _ model.Session, id uint64, method model.PaymentMethod) (model.PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, id)
	if method == model.PaymentMoMo {
		return model.PaymentResult{Success: true, PayURL: "https://pay.example/1"}, nil
	}
	return model.PaymentResult{Success: true}, nil
}

// memDrafts stores drafts as JSON like the Redis repository does.
type memDrafts struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemDrafts() *memDrafts { return &memDrafts{m: map[string][]byte{}} }

func (s *memDrafts) Save(_ context.Context, d *draft.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[d.ID] = b
	return nil
}

func (s *memDrafts) GetOwned(_ context.Context, id, userID string) (*draft.Draft, error) {
	s.mu.Lock()
	b, ok := s.m[id]
	s.mu.Unlock()
	if !ok {
		return nil, repository.ErrDraftNotFound
	}
	var d draft.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return &d, nil
}

func (s *memDrafts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *memDrafts) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	return ok
}

type memLedger struct {
	mu sync.Mutex
	m  map[string]repository.SubmissionRecord
}

func newMemLedger() *memLedger { return &memLedger{m: map[string]repository.SubmissionRecord{}} }

func (l *memLedger) Create(_ context.Context, rec *repository.SubmissionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[rec.DraftID]; ok {
		return repository.ErrConflict
	}
	rec.Status = repository.SubmissionPending
	l.m[rec.DraftID] = *rec
	return nil
}

func (l *memLedger) put(rec repository.SubmissionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[rec.DraftID] = rec
}

func (l *memLedger) MarkSucceeded(_ context.Context, draftID string, bookingID uint64, status string, total decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.m[draftID]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	rec.Status = repository.SubmissionSucceeded
	rec.BookingID.Int64, rec.BookingID.Valid = int64(bookingID), true
	rec.BookingStatus = status
	rec.Total = decimal.NewNullDecimal(total)
	l.m[draftID] = rec
	return nil
}

func (l *memLedger) MarkFailed(_ context.Context, draftID, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.m[draftID]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	rec.Status = repository.SubmissionFailed
	rec.ErrorMessage = message
	l.m[draftID] = rec
	return nil
}

func (l *memLedger) GetByDraft(_ context.Context, draftID string) (repository.SubmissionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.m[draftID]
	if !ok {
		return repository.SubmissionRecord{}, repository.ErrSubmissionNotFound
	}
	return rec, nil
}

type memLocks struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocks() *memLocks { return &memLocks{held: map[string]string{}} }

func (l *memLocks) Acquire(_ context.Context, name string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[name]; ok {
		return "", false, nil
	}
	l.held[name] = "tok-" + name
	return l.held[name], true, nil
}

func (l *memLocks) Release(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] == token {
		delete(l.held, name)
	}
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []q.BookingSubmittedEvent
	err    error
}

func (r *recordingEvents) PublishBookingSubmitted(_ context.Context, ev q.BookingSubmittedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type checkoutFixture struct {
	svc     *CheckoutService
	backend *fakeBackend
	drafts  *memDrafts
	ledger  *memLedger
	locks   *memLocks
	events  *recordingEvents
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		backend: newFakeBackend(),
		drafts:  newMemDrafts(),
		ledger:  newMemLedger(),
		locks:   newMemLocks(),
		events:  &recordingEvents{},
	}
	f.svc = NewCheckoutService(CheckoutDeps{
		Catalog:  f.backend,
		Bookings: f.backend,
		Drafts:   f.drafts,
		Ledger:   f.ledger,
		Locks:    f.locks,
		Events:   f.events,
		Now:      func() time.Time { return testNow },
	})
	return f
}
