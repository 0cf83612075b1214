package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/honeynil/SocialWorld-web/internal/api"
	"github.com/honeynil/SocialWorld-web/internal/config"
	"github.com/honeynil/SocialWorld-web/internal/gate"
	"github.com/honeynil/SocialWorld-web/internal/handler"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/auth"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/kafka"
	infraredis "github.com/honeynil/SocialWorld-web/internal/infrastructure/redis"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/remoteapi"
	"github.com/honeynil/SocialWorld-web/internal/observability"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	"github.com/honeynil/SocialWorld-web/internal/repository/memory"
	"github.com/honeynil/SocialWorld-web/internal/repository/postgres"
	redisrepo "github.com/honeynil/SocialWorld-web/internal/repository/redis"
	service "github.com/honeynil/SocialWorld-web/internal/services"
	_ "github.com/lib/pq"
)

const serviceName = "socialworld-web"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем логи, метрики, трейсы
	shutdownTracing, metricsHandler := observability.Setup(ctx, serviceName, cfg.LogLevel, cfg.OTLPEndpoint)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	client, err := remoteapi.New(cfg.APIURL, cfg.APITimeout)
	if err != nil {
		return err
	}

	sessions := service.NewSessionService(client, publisher)
	h, err := handler.NewHandler(sessions, client, auth.DecodeToken)
	if err != nil {
		return err
	}

	router := api.SetupRouter(h, api.Options{
		Sessions: backend,
		Cookie: auth.CookieOptions{
			Name:   cfg.SessionCookie,
			Secret: sessionSecret(cfg),
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
		Gate:    gate.New(auth.DecodeToken),
		Metrics: metricsHandler,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr, "api_url", cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (repository.SessionBackend, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := infraredis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return redisrepo.NewRedisSessionBackend(client, cfg.SessionTTL), nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		backend := postgres.NewPostgresSessionBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		go purgeLoop(ctx, backend, cfg.SessionTTL)
		return backend, nil

	default:
		slog.Info("using in-memory sessions")
		return memory.NewBackend(), nil
	}
}

// sessionSecret falls back to a per-process key, so cookies issued before a
// restart stop being accepted.
func sessionSecret(cfg *config.Config) []byte {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret)
	}
	slog.Warn("SESSION_SECRET is not set, using a random key")
	return securecookie.GenerateRandomKey(config.MinSessionSecret)
}

// purgeLoop drops sessions idle for longer than ttl.
func purgeLoop(ctx context.Context, backend *postgres.PostgresSessionBackend, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := backend.PurgeIdle(ctx, ttl); err != nil {
				slog.Warn("failed to purge idle sessions", "error", err)
			}
		}
	}
}

func newPublisher(cfg *config.Config) (kafka.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return kafka.NopPublisher{}, func() {}
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.SessionTopic)
	slog.Info("publishing session events", "brokers", cfg.KafkaBrokers, "topic", cfg.SessionTopic)
	return kafka.NewSessionEventPublisher(producer), func() {
		if err := producer.Close(); err != nil {
			slog.Warn("failed to close kafka producer", "error", err)
		}
	}
}
