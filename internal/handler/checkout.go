package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/service"
	"github.com/iliyamo/cinema-checkout/internal/validate"
)

// CheckoutService is the checkout flow as used by CheckoutHandler.
type CheckoutService interface {
	Catalog(ctx context.Context, showtimeID uint64) (model.ShowtimeCatalog, error)
	CreateDraft(ctx context.Context, sess model.Session, showtimeID, movieID uint64) (service.DraftView, error)
	View(ctx context.Context, sess model.Session, draftID string) (service.DraftView, error)
	ToggleSeat(ctx context.Context, sess model.Session, draftID string, seatID uint64) (service.DraftView, error)
	AdjustFood(ctx context.Context, sess model.Session, draftID string, foodID uint64, delta int) (service.DraftView, error)
	ApplyVoucher(ctx context.Context, sess model.Session, draftID string, voucherID uint64) (service.DraftView, error)
	ClearVoucher(ctx context.Context, sess model.Session, draftID string) (service.DraftView, error)
	Abandon(ctx context.Context, sess model.Session, draftID string) error
	Submit(ctx context.Context, sess model.Session, draftID string) (service.SubmitResult, error)
}

// CheckoutHandler serves the public catalog and the customer's drafts.
type CheckoutHandler struct {
	Svc CheckoutService
	v   *validate.Validator
}

// NewCheckoutHandler wraps svc.
func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{Svc: svc, v: validate.New()}
}

type createDraftRequest struct {
	ShowtimeID uint64 `json:"showtimeId" validate:"required"`
	MovieID    uint64 `json:"movieId" validate:"required"`
}

type foodDeltaRequest struct {
	Delta int `json:"delta" validate:"min=-20,max=20"`
}

type voucherChoice struct {
	VoucherID uint64 `json:"voucherId" validate:"required"`
}

// Catalog handles GET /v1/showtimes/:id/catalog.
func (h *CheckoutHandler) Catalog(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	cat, err := h.Svc.Catalog(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

// CreateDraft handles POST /v1/checkout/drafts.
func (h *CheckoutHandler) CreateDraft(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req createDraftRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.v.Struct(req); err != nil {
		return writeError(c, err)
	}
	view, err := h.Svc.CreateDraft(c.Request().Context(), sess, req.ShowtimeID, req.MovieID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// GetDraft handles GET /v1/checkout/drafts/:id.
func (h *CheckoutHandler) GetDraft(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(ctx context.Context) (service.DraftView, error) {
		return h.Svc.View(ctx, sess, c.Param("id"))
	})
}

// ToggleSeat handles POST /v1/checkout/drafts/:id/seats/:seatId/toggle.
func (h *CheckoutHandler) ToggleSeat(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	seatID, err := parseID(c, "seatId")
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(ctx context.Context) (service.DraftView, error) {
		return h.Svc.ToggleSeat(ctx, sess, c.Param("id"), seatID)
	})
}

// AdjustFood handles POST /v1/checkout/drafts/:id/foods/:foodId.
func (h *CheckoutHandler) AdjustFood(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	foodID, err := parseID(c, "foodId")
	if err != nil {
		return writeError(c, err)
	}
	var req foodDeltaRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.v.Struct(req); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(ctx context.Context) (service.DraftView, error) {
		return h.Svc.AdjustFood(ctx, sess, c.Param("id"), foodID, req.Delta)
	})
}

// ApplyVoucher handles PUT /v1/checkout/drafts/:id/voucher.
func (h *CheckoutHandler) ApplyVoucher(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req voucherChoice
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.v.Struct(req); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(ctx context.Context) (service.DraftView, error) {
		return h.Svc.ApplyVoucher(ctx, sess, c.Param("id"), req.VoucherID)
	})
}

// ClearVoucher handles DELETE /v1/checkout/drafts/:id/voucher.
func (h *CheckoutHandler) ClearVoucher(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(ctx context.Context) (service.DraftView, error) {
		return h.Svc.ClearVoucher(ctx, sess, c.Param("id"))
	})
}

// Abandon handles DELETE /v1/checkout/drafts/:id.
func (h *CheckoutHandler) Abandon(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Svc.Abandon(c.Request().Context(), sess, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit handles POST /v1/checkout/drafts/:id/submit.  A replayed result is
// answered with 200, a fresh booking with 201.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Svc.Submit(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

func (h *CheckoutHandler) respond(c echo.Context, fn func(context.Context) (service.DraftView, error)) error {
	view, err := fn(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
