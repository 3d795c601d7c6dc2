package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxSession = "session"
	ctxUserID  = "user_id"
	ctxRole    = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the cinema backend and stores the caller's model.Session in the
// request context.  The raw token is kept on the session because every
// backend call made on the caller's behalf forwards it.
//
// The subject claim may be a string or a number; the role claim defaults to
// USER when absent.
func JWTAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			sub, ok := subject(claims["sub"])
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			role, _ := claims["role"].(string)
			role = strings.ToUpper(strings.TrimPrefix(role, "ROLE_"))
			if role == "" {
				role = model.RoleUser
			}

			c.Set(ctxSession, model.Session{UserID: sub, Role: role, Token: raw})
			c.Set(ctxUserID, sub)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}

func subject(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case float64:
		if s <= 0 || s != float64(uint64(s)) {
			return "", false
		}
		return strconv.FormatUint(uint64(s), 10), true
	case nil:
		return "", false
	default:
		str := fmt.Sprint(s)
		return str, str != ""
	}
}
