package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/logging"
)

const principalKey = "auth.principal"

type Gatekeeper interface {
	Authenticate(ctx context.Context, bearer string) (auth.Principal, error)
	Authorize(ctx context.Context, bearer string) (auth.Principal, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}

func RequireAuth(g Gatekeeper) echo.MiddlewareFunc {
	return gate("require_auth", g.Authenticate)
}

func RequireAdmin(g Gatekeeper) echo.MiddlewareFunc {
	return gate("require_admin", g.Authorize)
}

func gate(name string, check func(context.Context, string) (auth.Principal, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", name)

			p, err := check(ctx, BearerToken(c.Request()))
			if err != nil {
				status := auth.HTTPStatus(err)
				if status == 0 {
					authDecisions.WithLabelValues(name, "error").Inc()
					l.Error("auth_failed", "status", 500, "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
				}
				authDecisions.WithLabelValues(name, outcome(err)).Inc()
				l.Warn("auth_failed", "status", status, "reason", err.Error())
				if status == http.StatusUnauthorized {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				}
				return echo.NewHTTPError(status, GateMessage(err))
			}

			if p.IsBypassed() {
				authDecisions.WithLabelValues(name, "bypassed").Inc()
			} else {
				authDecisions.WithLabelValues(name, "allowed").Inc()
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, auth.ErrForbidden):
		return "forbidden"
	default:
		return "unauthenticated"
	}
}

func GateMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenRevoked):
		return "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Could not validate credentials"
	case errors.Is(err, auth.ErrForbidden):
		return "Not enough permissions"
	default:
		return "Not authenticated"
	}
}
