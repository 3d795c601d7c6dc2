package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/handler"
	"github.com/iliyamo/cinema-checkout/internal/middleware"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// RegisterCustomer registers the checkout and booking endpoints under /v1.
// All routes require a valid JWT; administrators may use them too.
func RegisterCustomer(e *echo.Echo, ch *handler.CheckoutHandler, bh *handler.BookingHandler, jwtSecret string, mw Middlewares) {
	g := e.Group("/v1", chain(
		mw.RateLimit,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)...)

	d := g.Group("/checkout/drafts")
	d.POST("", ch.CreateDraft)
	d.GET("/:id", ch.GetDraft)
	d.DELETE("/:id", ch.Abandon)
	d.POST("/:id/seats/:seatId/toggle", ch.ToggleSeat)
	d.POST("/:id/foods/:foodId", ch.AdjustFood)
	d.PUT("/:id/voucher", ch.ApplyVoucher)
	d.DELETE("/:id/voucher", ch.ClearVoucher)
	d.POST("/:id/submit", ch.Submit, chain(mw.SubmitLimit)...)

	// Echo matches the static /me before the /:id parameter.
	g.GET("/bookings/me", bh.Mine)
	g.GET("/bookings/:id", bh.Get)
	g.POST("/bookings/:id/payments/momo", bh.PayMoMo)
	g.POST("/bookings/:id/payments/cash", bh.PayCash)
}
