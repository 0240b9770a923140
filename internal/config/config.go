package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	JWTAlgorithm     string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	DisableAuth bool
	BcryptCost  int

	LoginRatePerSec float64
	LoginRateBurst  int

	KafkaBrokers []string
	KafkaTopic   string

	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set win.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		slog.Info("dotenv_skipped", "path", path, "reason", err.Error())
	}
}

func Load() (*Config, error) {
	var errs []error

	disable, err := parseSwitch("DISABLE_AUTH", EnvDefault("DISABLE_AUTH", "1"))
	if err != nil {
		errs = append(errs, err)
	}

	accessMin, err := envPositiveInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		errs = append(errs, err)
	}
	refreshDays, err := envPositiveInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	if err != nil {
		errs = append(errs, err)
	}

	rate, err := strconv.ParseFloat(EnvDefault("LOGIN_RATE_PER_SEC", "5"), 64)
	if err != nil || rate <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_PER_SEC must be a positive number"))
	}

	cfg := &Config{
		HTTPAddr: EnvDefault("HTTP_ADDR", ":8080"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: databaseURL(),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		JWTAlgorithm:     strings.ToUpper(EnvDefault("JWT_ALG", "HS256")),
		AccessTTL:        time.Duration(accessMin) * time.Minute,
		RefreshTTL:       time.Duration(refreshDays) * 24 * time.Hour,

		DisableAuth: disable,
		BcryptCost:  EnvIntDefault("BCRYPT_COST", 0),

		LoginRatePerSec: rate,
		LoginRateBurst:  EnvIntDefault("LOGIN_RATE_BURST", 10),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "user_events"),

		BootstrapAdminUsername: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	if len(cfg.JWTAccessSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if len(cfg.JWTRefreshSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_REFRESH_SECRET"))
	}
	if len(cfg.JWTAccessSecret) > 0 && string(cfg.JWTAccessSecret) == string(cfg.JWTRefreshSecret) {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALG %q is not supported", cfg.JWTAlgorithm))
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DBDriver))
	}
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_HOST/DB_NAME must be set"))
	}
	if cfg.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_BURST must be positive"))
	}
	if (cfg.BootstrapAdminUsername == "") != (cfg.BootstrapAdminPassword == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// parseSwitch accepts exactly "0" or "1".
func parseSwitch(key, v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be 0 or 1, got %q", key, v)
	}
}

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host, name := os.Getenv("DB_HOST"), os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		Host:     host + ":" + EnvDefault("DB_PORT", "5432"),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func envPositiveInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
