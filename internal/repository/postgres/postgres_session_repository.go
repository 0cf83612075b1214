package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_values (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, key)
)`

type PostgresSessionBackend struct {
	db *sql.DB
}

func NewPostgresSessionBackend(db *sql.DB) *PostgresSessionBackend {
	return &PostgresSessionBackend{db: db}
}

// EnsureSchema creates the session table if it does not exist.
func (b *PostgresSessionBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create session_values: %w", err)
	}
	return nil
}

// PurgeIdle deletes sessions whose newest value is older than ttl.
func (b *PostgresSessionBackend) PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	query := `
	DELETE FROM session_values
	WHERE session_id IN (
		SELECT session_id FROM session_values
		GROUP BY session_id
		HAVING max(updated_at) < $1
	)`
	res, err := b.db.ExecContext(ctx, query, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return n, nil
}

func (b *PostgresSessionBackend) Open(sessionID string) repository.SessionStore {
	return &PostgresSessionRepository{db: b.db, sessionID: sessionID}
}

func (b *PostgresSessionBackend) Close() error {
	return b.db.Close()
}

type PostgresSessionRepository struct {
	db        *sql.DB
	sessionID string
}

func (r *PostgresSessionRepository) track(ctx context.Context, method string) (context.Context, func(*error)) {
	tracer := otel.Tracer("session-repository")
	ctx, span := tracer.Start(ctx, method)
	span.SetAttributes(attribute.String("session.backend", "postgres"))
	start := time.Now()
	return ctx, func(errp *error) {
		status := "success"
		if err := *errp; err != nil && !stderrors.Is(err, pkgerrors.ErrKeyNotFound) {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.StoreCalls.WithLabelValues("postgres", method, status).Inc()
		observability.StoreDuration.WithLabelValues("postgres", method).Observe(time.Since(start).Seconds())
		span.End()
	}
}

func (r *PostgresSessionRepository) Get(ctx context.Context, key string) (value string, err error) {
	ctx, done := r.track(ctx, "Get")
	defer done(&err)

	query := `SELECT value FROM session_values WHERE session_id = $1 AND key = $2`
	err = r.db.QueryRowContext(ctx, query, r.sessionID, key).Scan(&value)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return "", pkgerrors.ErrKeyNotFound
	case err != nil:
		slog.Error("failed to get session value", "method", "Get", "key", key, "error", err)
		return "", fmt.Errorf("failed to get session value: %w", err)
	}
	return value, nil
}

func (r *PostgresSessionRepository) Set(ctx context.Context, key, value string) (err error) {
	ctx, done := r.track(ctx, "Set")
	defer done(&err)

	if r.sessionID == "" {
		return pkgerrors.ErrEmptySessionID
	}

	query := `
	INSERT INTO session_values (session_id, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err = r.db.ExecContext(ctx, query, r.sessionID, key, value); err != nil {
		slog.Error("failed to set session value", "method", "Set", "key", key, "error", err)
		return fmt.Errorf("failed to set session value: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, key string) (err error) {
	ctx, done := r.track(ctx, "Delete")
	defer done(&err)

	query := `DELETE FROM session_values WHERE session_id = $1 AND key = $2`
	if _, err = r.db.ExecContext(ctx, query, r.sessionID, key); err != nil {
		slog.Error("failed to delete session value", "method", "Delete", "key", key, "error", err)
		return fmt.Errorf("failed to delete session value: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Clear(ctx context.Context) (err error) {
	ctx, done := r.track(ctx, "Clear")
	defer done(&err)

	query := `DELETE FROM session_values WHERE session_id = $1`
	if _, err = r.db.ExecContext(ctx, query, r.sessionID); err != nil {
		slog.Error("failed to clear session", "method", "Clear", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
