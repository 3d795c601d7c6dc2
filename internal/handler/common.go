package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/draft"
	"github.com/iliyamo/cinema-checkout/internal/middleware"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/repository"
	"github.com/iliyamo/cinema-checkout/internal/service"
)

// errUnauthenticated is returned by handlers mounted without JWTAuth.
var errUnauthenticated = &apperror.AuthError{Message: "missing session"}

func session(c echo.Context) (model.Session, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return model.Session{}, errUnauthenticated
	}
	return s, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("InvalidField", "invalid %s", name)
	}
	return id, nil
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperror.Validation("InvalidRequest", "invalid request body")
	}
	return nil
}

// writeError maps an error to its HTTP status and a JSON body
// {"error": message, "code": code}.
func writeError(c echo.Context, err error) error {
	var (
		verr *apperror.ValidationError
		uerr *apperror.UpstreamError
		aerr *apperror.AuthError
		cerr *apperror.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "code": verr.Code})
	case errors.As(err, &aerr):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": aerr.Error(), "code": "Unauthorized"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "code": "Forbidden"})
	case errors.Is(err, repository.ErrDraftNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found", "code": "DraftNotFound"})
	case errors.Is(err, repository.ErrConfirmationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "confirmation token is unknown, expired or already used", "code": "ConfirmationNotFound"})
	case errors.Is(err, draft.ErrSubmitted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "DraftSubmitted"})
	case errors.Is(err, service.ErrSubmissionInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrSubmissionInFlight.Message, "code": "SubmissionInFlight"})
	case errors.Is(err, service.ErrSubmissionUnknown):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrSubmissionUnknown.Message, "code": "SubmissionUnknown"})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusConflict, echo.Map{"error": cerr.Message, "code": "Conflict"})
	case errors.As(err, &uerr):
		status := http.StatusBadGateway
		switch uerr.Status {
		case http.StatusNotFound, http.StatusForbidden, http.StatusBadRequest:
			status = uerr.Status
		}
		return c.JSON(status, echo.Map{"error": uerr.Message, "code": "Upstream"})
	case apperror.IsTransport(err):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "backend unavailable", "code": "Transport"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "backend timeout", "code": "Timeout"})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
