package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/havirkesht/backend/internal/middleware"
)

type Deps struct {
	Logger    *slog.Logger
	Gate      middleware.Gatekeeper
	Auth      *AuthHTTP
	Users     *UsersHTTP
	Provinces *ProvincesHTTP
	RateLimit middleware.RateLimitConfig
	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := middleware.LoginRateLimiter(d.RateLimit)
	requireAuth := middleware.RequireAuth(d.Gate)
	requireAdmin := middleware.RequireAdmin(d.Gate)

	e.POST("/token", d.Auth.Login, limiter)
	e.POST("/refresh-token", d.Auth.Refresh, limiter)
	e.POST("/logout", d.Auth.Logout)
	e.POST("/changepassword", d.Auth.ChangePassword, requireAuth)

	users := e.Group("/users")
	users.POST("/admin", d.Users.CreateAdmin, requireAdmin)
	users.GET("", d.Users.List, requireAuth)
	users.GET("/:id", d.Users.Get, requireAuth)
	users.PUT("/:id", d.Users.Update, requireAdmin)

	province := e.Group("/province")
	province.POST("", d.Provinces.Create, requireAuth)
	province.GET("", d.Provinces.List, requireAuth)
	province.DELETE("/:province", d.Provinces.Delete, requireAuth)
}
