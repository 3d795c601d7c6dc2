// Package router defines how HTTP routes are registered for the gateway.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/handler"
	"github.com/iliyamo/cinema-checkout/internal/middleware"
)

// New returns an Echo instance with the process wide middlewares.  Recover
// sits innermost so a panicking handler is answered with a 500 that the
// request logger still records.
func New(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID(), middleware.RequestLogger(log), echomw.Recover())
	return e
}

// Middlewares are the optional Redis backed middlewares.  A nil entry is
// skipped, which keeps tests free of Redis.
type Middlewares struct {
	RateLimit   echo.MiddlewareFunc // every /v1 route
	SubmitLimit echo.MiddlewareFunc // draft submission, keyed by user
	Cache       echo.MiddlewareFunc // public catalog responses
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers /healthz and /readyz.  ready may be nil.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterPublic registers the unauthenticated catalog endpoint.
func RegisterPublic(e *echo.Echo, h *handler.CheckoutHandler, mw Middlewares) {
	g := e.Group("/v1", chain(mw.RateLimit)...)
	g.GET("/showtimes/:id/catalog", h.Catalog, chain(mw.Cache)...)
}
