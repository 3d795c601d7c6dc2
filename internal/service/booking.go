package service

import (
	"context"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// BookingBackend reads bookings and starts payments.
type BookingBackend interface {
	Booking(ctx context.Context, sess model.Session, id uint64) (model.Booking, error)
	MyBookings(ctx context.Context, sess model.Session) ([]model.Booking, error)
	Pay(ctx context.Context, sess model.Session, bookingID uint64, method model.PaymentMethod) (model.PaymentResult, error)
}

// BookingService serves the customer's bookings after submission.
type BookingService struct {
	backend BookingBackend
}

// NewBookingService wraps backend.
func NewBookingService(backend BookingBackend) *BookingService {
	return &BookingService{backend: backend}
}

// Get returns one booking of the caller.
func (s *BookingService) Get(ctx context.Context, sess model.Session, id uint64) (model.Booking, error) {
	return s.backend.Booking(ctx, sess, id)
}

// Mine lists the caller's bookings.
func (s *BookingService) Mine(ctx context.Context, sess model.Session) ([]model.Booking, error) {
	return s.backend.MyBookings(ctx, sess)
}

// Pay starts the payment of a pending booking.  Only pending bookings can be
// paid; the booking is read first so a paid one is refused locally.
func (s *BookingService) Pay(ctx context.Context, sess model.Session, id uint64, method model.PaymentMethod) (model.PaymentResult, error) {
	if method != model.PaymentMoMo && method != model.PaymentCash {
		return model.PaymentResult{}, apperror.Validation("InvalidPaymentMethod", "payment method must be momo or Cash")
	}
	b, err := s.backend.Booking(ctx, sess, id)
	if err != nil {
		return model.PaymentResult{}, err
	}
	if b.Status != model.BookingPending {
		return model.PaymentResult{}, &apperror.ConflictError{Message: "booking is " + string(b.Status)}
	}
	return s.backend.Pay(ctx, sess, id, method)
}
