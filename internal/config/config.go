package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"github.com/joho/godotenv"
)

// MinSessionSecret is the shortest accepted cookie signing key.
const MinSessionSecret = 32

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr     string
	APIURL       string
	APITimeout   time.Duration
	LogLevel     string
	OTLPEndpoint string

	SessionBackend string
	SessionCookie  string
	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool

	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	SessionTopic string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment and defaults", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Unset values take defaults; malformed
// ones are an error.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		HTTPAddr:       get("HTTP_ADDR", ":8080"),
		APIURL:         get("API_URL", "http://localhost:3000"),
		LogLevel:       get("LOG_LEVEL", "info"),
		OTLPEndpoint:   get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SessionBackend: strings.ToLower(get("SESSION_BACKEND", BackendMemory)),
		SessionCookie:  get("SESSION_COOKIE", "sw_session"),
		SessionSecret:  get("SESSION_SECRET", ""),
		PostgresDSN:    get("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=socialworld sslmode=disable"),
		RedisAddr:      get("REDIS_ADDR", "localhost:6379"),
		SessionTopic:   get("KAFKA_SESSION_TOPIC", "sessions"),
	}

	var err error
	if cfg.APITimeout, err = time.ParseDuration(get("API_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(get("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	// Без брокера события сессий не публикуются
	for _, b := range strings.Split(getenv("KAFKA_BROKER"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	switch cfg.SessionBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", pkgerrors.ErrUnknownBackend, cfg.SessionBackend)
	}
	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < MinSessionSecret {
		return nil, fmt.Errorf("invalid SESSION_SECRET: need at least %d bytes", MinSessionSecret)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("invalid API_TIMEOUT: must be positive")
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"api_url", cfg.APIURL,
		"session_backend", cfg.SessionBackend,
		"kafka_brokers", cfg.KafkaBrokers)
	return cfg, nil
}
