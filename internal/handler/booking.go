package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// BookingService reads bookings and starts payments.
type BookingService interface {
	Get(ctx context.Context, sess model.Session, id uint64) (model.Booking, error)
	Mine(ctx context.Context, sess model.Session) ([]model.Booking, error)
	Pay(ctx context.Context, sess model.Session, id uint64, method model.PaymentMethod) (model.PaymentResult, error)
}

// BookingHandler serves the customer's bookings.
type BookingHandler struct {
	Svc BookingService
}

// NewBookingHandler wraps svc.
func NewBookingHandler(svc BookingService) *BookingHandler { return &BookingHandler{Svc: svc} }

// Mine handles GET /v1/bookings/me.
func (h *BookingHandler) Mine(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.Svc.Mine(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []model.Booking{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	b, err := h.Svc.Get(c.Request().Context(), sess, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// PayMoMo handles POST /v1/bookings/:id/payments/momo.
func (h *BookingHandler) PayMoMo(c echo.Context) error { return h.pay(c, model.PaymentMoMo) }

// PayCash handles POST /v1/bookings/:id/payments/cash.
func (h *BookingHandler) PayCash(c echo.Context) error { return h.pay(c, model.PaymentCash) }

func (h *BookingHandler) pay(c echo.Context, method model.PaymentMethod) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Svc.Pay(c.Request().Context(), sess, id, method)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
