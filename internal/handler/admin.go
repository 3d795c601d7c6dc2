package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/service"
)

// AdminService is the administrative surface used by AdminHandler.
type AdminService interface {
	Tariffs(ctx context.Context, sess model.Session) ([]model.SeatTariff, error)
	CreateTariff(ctx context.Context, sess model.Session, req model.SeatTariffRequest) (model.SeatTariff, error)
	UpdateTariff(ctx context.Context, sess model.Session, id uint64, req model.SeatTariffRequest) (model.SeatTariff, error)
	CreateVoucher(ctx context.Context, sess model.Session, req model.VoucherRequest) (model.Voucher, error)
	UpdateVoucher(ctx context.Context, sess model.Session, id uint64, req model.VoucherRequest) (model.Voucher, error)
	Seats(ctx context.Context, sess model.Session, auditoriumID uint64) ([]model.Seat, error)
	CreateRow(ctx context.Context, sess model.Session, req model.BulkSeatRequest) ([]model.Seat, error)
	SetSeatStatus(ctx context.Context, sess model.Session, seatID uint64, active bool) (model.Seat, error)
	SetSeatType(ctx context.Context, sess model.Session, seatID, tariffID uint64) (model.Seat, error)
	DeleteSeat(ctx context.Context, sess model.Session, seatID uint64) error
	SetSeatsType(ctx context.Context, sess model.Session, req model.SeatBatchRequest) (service.SeatBatchResult, error)
	DeleteSeats(ctx context.Context, sess model.Session, req model.SeatBatchRequest) (service.SeatBatchResult, error)
	RequestRowDeletion(ctx context.Context, sess model.Session, auditoriumID uint64, row string) (service.RowDeletionTicket, error)
	ConfirmRowDeletion(ctx context.Context, sess model.Session, auditoriumID uint64, row, token string) (service.RowDeletionResult, error)
}

// AdminHandler serves /v1/admin.  Every route requires the ADMIN role.
type AdminHandler struct {
	Svc AdminService
}

// NewAdminHandler wraps svc.
func NewAdminHandler(svc AdminService) *AdminHandler { return &AdminHandler{Svc: svc} }

type seatStatusRequest struct {
	Active *bool `json:"active"`
}

type seatTypeRequest struct {
	TypeID uint64 `json:"typeId"`
}

// ListTariffs handles GET /v1/admin/seat-prices.
func (h *AdminHandler) ListTariffs(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.Svc.Tariffs(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateTariff handles POST /v1/admin/seat-prices.
func (h *AdminHandler) CreateTariff(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req model.SeatTariffRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	t, err := h.Svc.CreateTariff(c.Request().Context(), sess, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTariff handles PUT /v1/admin/seat-prices/:id.
func (h *AdminHandler) UpdateTariff(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req model.SeatTariffRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	t, err := h.Svc.UpdateTariff(c.Request().Context(), sess, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Seats handles GET /v1/admin/auditoriums/:id/seats.
func (h *AdminHandler) Seats(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	seats, err := h.Svc.Seats(c.Request().Context(), sess, id)
	if err != nil {
		return writeError(c, err)
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	return c.JSON(http.StatusOK, seats)
}

// CreateRow handles POST /v1/admin/seats.
func (h *AdminHandler) CreateRow(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req model.BulkSeatRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	seats, err := h.Svc.CreateRow(c.Request().Context(), sess, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, seats)
}

// SetSeatStatus handles PUT /v1/admin/seats/:id/status.
func (h *AdminHandler) SetSeatStatus(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req seatStatusRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Active == nil {
		return writeError(c, apperror.Validation("InvalidField", "active is required"))
	}
	st, err := h.Svc.SetSeatStatus(c.Request().Context(), sess, id, *req.Active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SetSeatType handles PUT /v1/admin/seats/:id/type.
func (h *AdminHandler) SetSeatType(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req seatTypeRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	st, err := h.Svc.SetSeatType(c.Request().Context(), sess, id, req.TypeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DeleteSeat handles DELETE /v1/admin/seats/:id.
func (h *AdminHandler) DeleteSeat(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Svc.DeleteSeat(c.Request().Context(), sess, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetSeatsType handles PUT /v1/admin/seats/type.
func (h *AdminHandler) SetSeatsType(c echo.Context) error {
	return h.batch(c, h.Svc.SetSeatsType)
}

// DeleteSeats handles POST /v1/admin/seats/bulk-delete.
func (h *AdminHandler) DeleteSeats(c echo.Context) error {
	return h.batch(c, h.Svc.DeleteSeats)
}

func (h *AdminHandler) batch(c echo.Context, run func(context.Context, model.Session, model.SeatBatchRequest) (service.SeatBatchResult, error)) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req model.SeatBatchRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := run(c.Request().Context(), sess, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// RequestRowDeletion handles POST /v1/admin/auditoriums/:id/rows/:row/delete.
// Nothing is deleted; the answer lists the seats and a confirmation token.
func (h *AdminHandler) RequestRowDeletion(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ticket, err := h.Svc.RequestRowDeletion(c.Request().Context(), sess, id, c.Param("row"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, ticket)
}

// ConfirmRowDeletion handles DELETE /v1/admin/auditoriums/:id/rows/:row?confirm=<token>.
func (h *AdminHandler) ConfirmRowDeletion(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	token := c.QueryParam("confirm")
	if token == "" {
		return writeError(c, apperror.Validation("ConfirmationRequired", "confirm token is required"))
	}
	res, err := h.Svc.ConfirmRowDeletion(c.Request().Context(), sess, id, c.Param("row"), token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// CreateVoucher handles POST /v1/admin/vouchers.
func (h *AdminHandler) CreateVoucher(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req model.VoucherRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	v, err := h.Svc.CreateVoucher(c.Request().Context(), sess, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// UpdateVoucher handles PUT /v1/admin/vouchers/:id.
func (h *AdminHandler) UpdateVoucher(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req model.VoucherRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	v, err := h.Svc.UpdateVoucher(c.Request().Context(), sess, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
