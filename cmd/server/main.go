package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/config"
	"github.com/havirkesht/backend/internal/db"
	"github.com/havirkesht/backend/internal/events"
	"github.com/havirkesht/backend/internal/hash"
	"github.com/havirkesht/backend/internal/httpserver"
	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/middleware"
	"github.com/havirkesht/backend/internal/repo"
	"github.com/havirkesht/backend/internal/service"
	"github.com/havirkesht/backend/internal/tokens"
)

func main() {
	config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(gdb)
	}
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}

	store := repo.New(gdb)
	if err := store.EnsureRoles(initCtx, auth.SeedRoles()); err != nil {
		cancel()
		log.Fatalf("seed roles: %v", err)
	}

	codec, err := tokens.NewCodec(tokens.CodecConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Algorithm:     cfg.JWTAlgorithm,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		cancel()
		log.Fatal(err)
	}

	gate, err := auth.NewGate(auth.GateConfig{
		Bypass:       cfg.DisableAuth,
		Codec:        codec,
		Revocations:  store,
		Users:        store,
		Capabilities: auth.DefaultCapabilities(),
	})
	if err != nil {
		cancel()
		log.Fatal(err)
	}
	if cfg.DisableAuth {
		logger.Warn("auth_disabled", "reason", "DISABLE_AUTH=1, every gated route is open")
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = producer
	}

	hasher := hash.New(cfg.BcryptCost)
	users := &service.UserService{Users: store, Hasher: hasher, Events: publisher}

	if cfg.BootstrapAdminUsername != "" {
		if err := users.EnsureAdmin(initCtx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword); err != nil {
			cancel()
			log.Fatalf("bootstrap admin: %v", err)
		}
	}
	cancel()

	e := echo.New()
	e.HideBanner = true

	httpserver.Register(e, &httpserver.Deps{
		Logger: logger,
		Gate:   gate,
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Users:       store,
			Revocations: store,
			Codec:       codec,
			Hasher:      hasher,
			Events:      publisher,
		}},
		Users:     &httpserver.UsersHTTP{Svc: users},
		Provinces: &httpserver.ProvincesHTTP{Svc: &service.ProvinceService{Provinces: store}},
		RateLimit: middleware.RateLimitConfig{PerSecond: cfg.LoginRatePerSec, Burst: cfg.LoginRateBurst},
		Ready:     func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
	logger.Info("server stopped")
}
