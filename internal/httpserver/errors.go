package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/hash"
	"github.com/havirkesht/backend/internal/middleware"
	"github.com/havirkesht/backend/internal/service"
)

// httpError is the one place domain errors become status codes.
func httpError(err error) *echo.HTTPError {
	if status := auth.HTTPStatus(err); status != 0 {
		return echo.NewHTTPError(status, middleware.GateMessage(err))
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, service.ErrOldPasswordIncorrect),
		errors.Is(err, hash.ErrInputTooLong):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}
