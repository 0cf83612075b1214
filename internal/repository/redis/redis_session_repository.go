package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	infraredis "github.com/honeynil/SocialWorld-web/internal/infrastructure/redis"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RedisSessionBackend keeps every session in one hash, session:<id>.
// Writes push the idle TTL forward; reads do not.
type RedisSessionBackend struct {
	client infraredis.RedisClient
	ttl    time.Duration
}

func NewRedisSessionBackend(client infraredis.RedisClient, ttl time.Duration) *RedisSessionBackend {
	return &RedisSessionBackend{client: client, ttl: ttl}
}

func (b *RedisSessionBackend) Open(sessionID string) repository.SessionStore {
	return &redisSessionStore{client: b.client, ttl: b.ttl, id: sessionID}
}

func (b *RedisSessionBackend) Close() error {
	return b.client.Close()
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

type redisSessionStore struct {
	client infraredis.RedisClient
	ttl    time.Duration
	id     string
}

func (s *redisSessionStore) track(ctx context.Context, method string) (context.Context, func(*error)) {
	tracer := otel.Tracer("redis-session-repository")
	ctx, span := tracer.Start(ctx, method)
	span.SetAttributes(attribute.String("session.backend", "redis"))
	start := time.Now()
	return ctx, func(errp *error) {
		status := "success"
		if err := *errp; err != nil && !errors.Is(err, pkgerrors.ErrKeyNotFound) {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.StoreCalls.WithLabelValues("redis", method, status).Inc()
		observability.StoreDuration.WithLabelValues("redis", method).Observe(time.Since(start).Seconds())
		span.End()
	}
}

func (s *redisSessionStore) Get(ctx context.Context, key string) (val string, err error) {
	ctx, done := s.track(ctx, "Get")
	defer done(&err)

	if s.id == "" {
		return "", pkgerrors.ErrKeyNotFound
	}
	val, err = s.client.HGet(ctx, sessionKey(s.id), key)
	if err != nil && !errors.Is(err, pkgerrors.ErrKeyNotFound) {
		slog.Error("failed to read session value", "method", "Get", "key", key, "error", err)
		return "", fmt.Errorf("failed to read session value: %w", err)
	}
	return val, err
}

func (s *redisSessionStore) Set(ctx context.Context, key, value string) (err error) {
	ctx, done := s.track(ctx, "Set")
	defer done(&err)

	if s.id == "" {
		return pkgerrors.ErrEmptySessionID
	}
	hash := sessionKey(s.id)
	if err = s.client.HSet(ctx, hash, key, value); err != nil {
		slog.Error("failed to write session value", "method", "Set", "key", key, "error", err)
		return fmt.Errorf("failed to write session value: %w", err)
	}
	if s.ttl > 0 {
		if err = s.client.Expire(ctx, hash, s.ttl); err != nil {
			slog.Error("failed to refresh session ttl", "method", "Set", "error", err)
			return fmt.Errorf("failed to refresh session ttl: %w", err)
		}
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, key string) (err error) {
	ctx, done := s.track(ctx, "Delete")
	defer done(&err)

	if s.id == "" {
		return nil
	}
	if err = s.client.HDel(ctx, sessionKey(s.id), key); err != nil {
		slog.Error("failed to delete session value", "method", "Delete", "key", key, "error", err)
		return fmt.Errorf("failed to delete session value: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Clear(ctx context.Context) (err error) {
	ctx, done := s.track(ctx, "Clear")
	defer done(&err)

	if s.id == "" {
		return nil
	}
	if err = s.client.Del(ctx, sessionKey(s.id)); err != nil {
		slog.Error("failed to clear session", "method", "Clear", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
