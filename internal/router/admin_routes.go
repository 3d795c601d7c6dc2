package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/handler"
	"github.com/iliyamo/cinema-checkout/internal/middleware"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, mw Middlewares) {
	g := e.Group("/v1/admin", chain(
		mw.RateLimit,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)...)

	// ---- Seat prices ----
	g.GET("/seat-prices", a.ListTariffs)
	g.POST("/seat-prices", a.CreateTariff)
	g.PUT("/seat-prices/:id", a.UpdateTariff)

	// ---- Seats ----
	g.GET("/auditoriums/:id/seats", a.Seats)
	g.POST("/seats", a.CreateRow)
	g.PUT("/seats/type", a.SetSeatsType)
	g.POST("/seats/bulk-delete", a.DeleteSeats)
	g.PUT("/seats/:id/status", a.SetSeatStatus)
	g.PUT("/seats/:id/type", a.SetSeatType)
	g.DELETE("/seats/:id", a.DeleteSeat)

	// Row deletion is two steps: the POST answers with a token, the DELETE
	// must carry it as ?confirm=.
	g.POST("/auditoriums/:id/rows/:row/delete", a.RequestRowDeletion)
	g.DELETE("/auditoriums/:id/rows/:row", a.ConfirmRowDeletion)

	// ---- Vouchers ----
	g.POST("/vouchers", a.CreateVoucher)
	g.PUT("/vouchers/:id", a.UpdateVoucher)
}
