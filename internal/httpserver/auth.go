package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/middleware"
	"github.com/havirkesht/backend/internal/service"
	"github.com/havirkesht/backend/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	pair, err := h.Svc.Login(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		if errors.Is(err, auth.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "User is disabled")
		}
		he := httpError(err)
		l.Warn("login_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	revokeOld := false
	if v := c.QueryParam("revoke_old"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			l.Warn("refresh_error", "status", 400, "reason", "bad revoke_old", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "revoke_old must be a boolean")
		}
		revokeOld = b
	}

	pair, err := h.Svc.Refresh(ctx, c.QueryParam("refresh_token"), revokeOld)
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "User is disabled")
		}
		return httpError(err)
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Logout(ctx, c.QueryParam("access_token"), c.QueryParam("refresh_token")); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.MessageOut{Message: "Logged out successfully"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ChangePassword(ctx, p, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrOldPasswordIncorrect) {
			return echo.NewHTTPError(http.StatusBadRequest, "Old password is incorrect")
		}
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.MessageOut{Message: "Password changed successfully"})
}
