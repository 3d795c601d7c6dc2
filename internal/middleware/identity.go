package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// SessionFrom returns the session stored by JWTAuth.  ok is false on
// routes that are not behind JWTAuth.
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(ctxSession).(model.Session)
	return s, ok
}

// currentUserID identifies the caller for rate limiting and logging.  It
// returns "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
