package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/repository"
	"github.com/iliyamo/cinema-checkout/internal/validate"
)

// AdminBackend is the part of the backend API used by administrators.
type AdminBackend interface {
	SeatsByAuditorium(ctx context.Context, sess model.Session, auditoriumID uint64) ([]model.Seat, error)
	CreateSeats(ctx context.Context, sess model.Session, req model.CreateSeatsRequest) ([]model.Seat, error)
	UpdateSeatStatus(ctx context.Context, sess model.Session, seatID uint64, active bool) (model.Seat, error)
	UpdateSeatType(ctx context.Context, sess model.Session, seatID, tariffID uint64) (model.Seat, error)
	DeleteSeat(ctx context.Context, sess model.Session, seatID uint64) error
	SeatTariffs(ctx context.Context, sess model.Session) ([]model.SeatTariff, error)
	SeatTariff(ctx context.Context, sess model.Session, id uint64) (model.SeatTariff, error)
	CreateSeatTariff(ctx context.Context, sess model.Session, req model.SeatTariffRequest) (model.SeatTariff, error)
	UpdateSeatTariff(ctx context.Context, sess model.Session, id uint64, req model.SeatTariffRequest) (model.SeatTariff, error)
	CreateVoucher(ctx context.Context, sess model.Session, req model.VoucherRequest) (model.Voucher, error)
	UpdateVoucher(ctx context.Context, sess model.Session, id uint64, req model.VoucherRequest) (model.Voucher, error)
}

// ConfirmationStore keeps destructive actions awaiting confirmation.
type ConfirmationStore interface {
	Put(ctx context.Context, del repository.RowDeletion) (string, error)
	Take(ctx context.Context, token string) (repository.RowDeletion, error)
	TTL() time.Duration
}

// AdminService validates admin requests locally and forwards them.
type AdminService struct {
	backend  AdminBackend
	confirms ConfirmationStore
	v        *validate.Validator
	log      *zap.Logger
	now      func() time.Time
}

// NewAdminService wires an AdminService.
func NewAdminService(backend AdminBackend, confirms ConfirmationStore, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{backend: backend, confirms: confirms, v: validate.New(), log: log, now: time.Now}
}

// Tariffs lists the seat tariffs.
func (s *AdminService) Tariffs(ctx context.Context, sess model.Session) ([]model.SeatTariff, error) {
	return s.backend.SeatTariffs(ctx, sess)
}

// CreateTariff adds a tariff for a seat type that has none yet.
func (s *AdminService) CreateTariff(ctx context.Context, sess model.Session, req model.SeatTariffRequest) (model.SeatTariff, error) {
	if err := s.v.Struct(req); err != nil {
		return model.SeatTariff{}, err
	}
	existing, err := s.backend.SeatTariffs(ctx, sess)
	if err != nil {
		return model.SeatTariff{}, err
	}
	if err := s.v.NewTariff(req, existing); err != nil {
		return model.SeatTariff{}, err
	}
	return s.backend.CreateSeatTariff(ctx, sess, req)
}

// UpdateTariff changes the price of a tariff.  Its seat type is fixed.
func (s *AdminService) UpdateTariff(ctx context.Context, sess model.Session, id uint64, req model.SeatTariffRequest) (model.SeatTariff, error) {
	current, err := s.backend.SeatTariff(ctx, sess, id)
	if err != nil {
		return model.SeatTariff{}, err
	}
	if err := s.v.TariffUpdate(current, req); err != nil {
		return model.SeatTariff{}, err
	}
	req.SeatType = current.SeatType
	return s.backend.UpdateSeatTariff(ctx, sess, id, req)
}

// CreateVoucher checks and creates a voucher.
func (s *AdminService) CreateVoucher(ctx context.Context, sess model.Session, req model.VoucherRequest) (model.Voucher, error) {
	if err := s.v.Voucher(req, s.now(), true); err != nil {
		return model.Voucher{}, err
	}
	return s.backend.CreateVoucher(ctx, sess, req)
}

// UpdateVoucher checks and updates a voucher.  The expiry may already have
// passed, which lets an admin edit an expired voucher.
func (s *AdminService) UpdateVoucher(ctx context.Context, sess model.Session, id uint64, req model.VoucherRequest) (model.Voucher, error) {
	if err := s.v.Voucher(req, s.now(), false); err != nil {
		return model.Voucher{}, err
	}
	return s.backend.UpdateVoucher(ctx, sess, id, req)
}

// Seats returns the seat map of an auditorium ordered by row then number.
func (s *AdminService) Seats(ctx context.Context, sess model.Session, auditoriumID uint64) ([]model.Seat, error) {
	seats, err := s.backend.SeatsByAuditorium(ctx, sess, auditoriumID)
	if err != nil {
		return nil, err
	}
	sortSeats(seats)
	return seats, nil
}

// CreateRow creates one row of seats numbered FromSeat..ToSeat.
func (s *AdminService) CreateRow(ctx context.Context, sess model.Session, req model.BulkSeatRequest) ([]model.Seat, error) {
	if err := s.v.BulkSeats(req); err != nil {
		return nil, err
	}
	return s.backend.CreateSeats(ctx, sess, req.Expand())
}

// SetSeatStatus activates or deactivates a seat.
func (s *AdminService) SetSeatStatus(ctx context.Context, sess model.Session, seatID uint64, active bool) (model.Seat, error) {
	return s.backend.UpdateSeatStatus(ctx, sess, seatID, active)
}

// SetSeatType moves a seat to another tariff.
func (s *AdminService) SetSeatType(ctx context.Context, sess model.Session, seatID, tariffID uint64) (model.Seat, error) {
	if tariffID == 0 {
		return model.Seat{}, apperror.Validation("InvalidField", "typeId is required")
	}
	return s.backend.UpdateSeatType(ctx, sess, seatID, tariffID)
}

// DeleteSeat removes a single seat.
func (s *AdminService) DeleteSeat(ctx context.Context, sess model.Session, seatID uint64) error {
	return s.backend.DeleteSeat(ctx, sess, seatID)
}

// RowDeletionTicket is the answer to the first step of a row deletion.  The
// token must be sent back to confirm.
type RowDeletionTicket struct {
	Token     string    `json:"token"`
	Row       string    `json:"row"`
	SeatIDs   []uint64  `json:"seatIds"`
	Labels    []string  `json:"labels"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RowDeletionResult reports the second step.  Remaining lists seats of the
// row still present after the deletion, read back from the backend.
type RowDeletionResult struct {
	Row       string            `json:"row"`
	Deleted   []uint64          `json:"deleted"`
	Failed    map[uint64]string `json:"failed,omitempty"`
	Remaining []uint64          `json:"remaining"`
}

// RequestRowDeletion records which seats a row deletion would remove and
// returns a single use confirmation token.
func (s *AdminService) RequestRowDeletion(ctx context.Context, sess model.Session, auditoriumID uint64, row string) (RowDeletionTicket, error) {
	if err := validate.RowLabel(row); err != nil {
		return RowDeletionTicket{}, err
	}
	seats, err := s.backend.SeatsByAuditorium(ctx, sess, auditoriumID)
	if err != nil {
		return RowDeletionTicket{}, err
	}
	inRow := seatsInRow(seats, row)
	if len(inRow) == 0 {
		return RowDeletionTicket{}, apperror.Validation("EmptyRow", "row %s of auditorium %d has no seats", row, auditoriumID)
	}
	ids := make([]uint64, len(inRow))
	labels := make([]string, len(inRow))
	for i, st := range inRow {
		ids[i] = st.ID
		labels[i] = st.Label()
	}
	now := s.now().UTC()
	token, err := s.confirms.Put(ctx, repository.RowDeletion{
		AuditoriumID: auditoriumID,
		Row:          row,
		SeatIDs:      ids,
		RequestedBy:  sess.UserID,
		CreatedAt:    now,
	})
	if err != nil {
		return RowDeletionTicket{}, err
	}
	return RowDeletionTicket{Token: token, Row: row, SeatIDs: ids, Labels: labels, ExpiresAt: now.Add(s.confirms.TTL())}, nil
}

// ConfirmRowDeletion consumes token and deletes the recorded seats.  Seat
// deletions run concurrently; a failing seat does not stop the others.
func (s *AdminService) ConfirmRowDeletion(ctx context.Context, sess model.Session, auditoriumID uint64, row, token string) (RowDeletionResult, error) {
	del, err := s.confirms.Take(ctx, token)
	if err != nil {
		return RowDeletionResult{}, err
	}
	if del.AuditoriumID != auditoriumID || del.Row != row || del.RequestedBy != sess.UserID {
		return RowDeletionResult{}, repository.ErrConfirmationNotFound
	}

	deleted, failed := s.fanOut(ctx, del.SeatIDs, func(ctx context.Context, id uint64) error {
		return s.backend.DeleteSeat(ctx, sess, id)
	})

	res := RowDeletionResult{Row: row, Deleted: deleted, Remaining: []uint64{}}
	if len(failed) > 0 {
		res.Failed = failed
		s.log.Warn("row deletion incomplete", zap.Uint64("auditorium_id", auditoriumID), zap.String("row", row), zap.Int("failed", len(failed)))
	}

	seats, err := s.backend.SeatsByAuditorium(ctx, sess, auditoriumID)
	if err != nil {
		return res, fmt.Errorf("reload seats: %w", err)
	}
	for _, st := range seatsInRow(seats, row) {
		res.Remaining = append(res.Remaining, st.ID)
	}
	return res, nil
}

// SeatBatchResult reports a batch edit seat by seat.
type SeatBatchResult struct {
	Succeeded []uint64          `json:"succeeded"`
	Failed    map[uint64]string `json:"failed,omitempty"`
}

// SetSeatsType moves every selected seat to the tariff req.TypeID.  Seats
// are updated independently; failures are reported per seat.
func (s *AdminService) SetSeatsType(ctx context.Context, sess model.Session, req model.SeatBatchRequest) (SeatBatchResult, error) {
	if err := s.v.Struct(req); err != nil {
		return SeatBatchResult{}, err
	}
	if req.TypeID == 0 {
		return SeatBatchResult{}, apperror.Validation("InvalidField", "typeId is required")
	}
	done, failed := s.fanOut(ctx, uniqueIDs(req.SeatIDs), func(ctx context.Context, id uint64) error {
		_, err := s.backend.UpdateSeatType(ctx, sess, id, req.TypeID)
		return err
	})
	return s.batchResult("seat type change", done, failed), nil
}

// DeleteSeats removes every selected seat.
func (s *AdminService) DeleteSeats(ctx context.Context, sess model.Session, req model.SeatBatchRequest) (SeatBatchResult, error) {
	if err := s.v.Struct(req); err != nil {
		return SeatBatchResult{}, err
	}
	done, failed := s.fanOut(ctx, uniqueIDs(req.SeatIDs), func(ctx context.Context, id uint64) error {
		return s.backend.DeleteSeat(ctx, sess, id)
	})
	return s.batchResult("seat deletion", done, failed), nil
}

func (s *AdminService) batchResult(op string, done []uint64, failed map[uint64]string) SeatBatchResult {
	res := SeatBatchResult{Succeeded: done}
	if res.Succeeded == nil {
		res.Succeeded = []uint64{}
	}
	if len(failed) > 0 {
		res.Failed = failed
		s.log.Warn(op+" incomplete", zap.Int("succeeded", len(done)), zap.Int("failed", len(failed)))
	}
	return res
}

// fanOut runs fn for every id, at most four at a time.  A failing id does
// not stop the others.  Succeeded ids come back sorted.
func (s *AdminService) fanOut(ctx context.Context, ids []uint64, fn func(context.Context, uint64) error) ([]uint64, map[uint64]string) {
	var (
		mu     sync.Mutex
		done   []uint64
		failed = map[uint64]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		g.Go(func() error {
			err := fn(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = apperror.MessageOf(err)
				return nil
			}
			done = append(done, id)
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(done, func(i, j int) bool { return done[i] < done[j] })
	return done, failed
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func seatsInRow(seats []model.Seat, row string) []model.Seat {
	var out []model.Seat
	for _, st := range seats {
		if st.RowChart == row {
			out = append(out, st)
		}
	}
	sortSeats(out)
	return out
}

func sortSeats(seats []model.Seat) {
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].RowChart != seats[j].RowChart {
			return seats[i].RowChart < seats[j].RowChart
		}
		return seats[i].SeatNumber.Int() < seats[j].SeatNumber.Int()
	})
}
