package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/kafka"
	"github.com/honeynil/SocialWorld-web/internal/models"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// AuthAPI is the part of the remote API that issues credentials.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.Credential, error)
	Register(ctx context.Context, email, username, password string) error
	Verify(ctx context.Context, email, code string) (models.Credential, error)
}

// SessionService owns every write of the credential into a session store.
type SessionService interface {
	Login(ctx context.Context, store repository.SessionStore, email, password string) (models.Credential, error)
	Register(ctx context.Context, store repository.SessionStore, email, username, password string) error
	Verify(ctx context.Context, store repository.SessionStore, code string) (models.Credential, error)
	Logout(ctx context.Context, store repository.SessionStore) error
}

type sessionService struct {
	api       AuthAPI
	publisher kafka.EventPublisher
}

func NewSessionService(api AuthAPI, publisher kafka.EventPublisher) *sessionService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &sessionService{api: api, publisher: publisher}
}

func (s *sessionService) Login(ctx context.Context, store repository.SessionStore, email, password string) (models.Credential, error) {
	tracer := otel.Tracer("session-service")
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if store == nil {
		return models.Credential{}, pkgerrors.ErrNilStore
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		span.SetStatus(codes.Error, "empty email or password")
		return models.Credential{}, fmt.Errorf("%w: email and password are required", pkgerrors.ErrInvalidInput)
	}

	cred, err := s.api.Login(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote login failed")
		return models.Credential{}, err
	}
	if err := s.store(ctx, store, cred); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential store failed")
		return models.Credential{}, err
	}

	s.publish(ctx, models.EventLoggedIn, cred.Username)
	return cred, nil
}

func (s *sessionService) Register(ctx context.Context, store repository.SessionStore, email, username, password string) error {
	tracer := otel.Tracer("session-service")
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	if store == nil {
		return pkgerrors.ErrNilStore
	}
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		span.SetStatus(codes.Error, "empty registration field")
		return fmt.Errorf("%w: email, username and password are required", pkgerrors.ErrInvalidInput)
	}

	if err := s.api.Register(ctx, email, username, password); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote register failed")
		return err
	}
	// Почта нужна шагу верификации
	if err := store.Set(ctx, repository.KeyPendingEmail, email); err != nil {
		span.RecordError(err)
		slog.Error("failed to store pending email", "error", err)
		return fmt.Errorf("failed to store pending email: %w", err)
	}
	return nil
}

func (s *sessionService) Verify(ctx context.Context, store repository.SessionStore, code string) (models.Credential, error) {
	tracer := otel.Tracer("session-service")
	ctx, span := tracer.Start(ctx, "Verify")
	defer span.End()

	if store == nil {
		return models.Credential{}, pkgerrors.ErrNilStore
	}
	code = strings.TrimSpace(code)
	if !validCode(code) {
		span.SetStatus(codes.Error, "invalid code")
		return models.Credential{}, pkgerrors.ErrInvalidCode
	}

	email, err := store.Get(ctx, repository.KeyPendingEmail)
	if errors.Is(err, pkgerrors.ErrKeyNotFound) || (err == nil && email == "") {
		span.SetStatus(codes.Error, "no pending email")
		return models.Credential{}, pkgerrors.ErrNoPendingEmail
	}
	if err != nil {
		span.RecordError(err)
		return models.Credential{}, fmt.Errorf("failed to read pending email: %w", err)
	}

	cred, err := s.api.Verify(ctx, email, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote verify failed")
		return models.Credential{}, err
	}
	if err := store.Delete(ctx, repository.KeyPendingEmail); err != nil {
		slog.Warn("failed to drop pending email", "error", err)
	}
	if err := s.store(ctx, store, cred); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential store failed")
		return models.Credential{}, err
	}

	s.publish(ctx, models.EventVerified, cred.Username)
	return cred, nil
}

// Logout clears the whole session, not only the credential.
func (s *sessionService) Logout(ctx context.Context, store repository.SessionStore) error {
	tracer := otel.Tracer("session-service")
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	if store == nil {
		return pkgerrors.ErrNilStore
	}
	username, _ := store.Get(ctx, repository.KeyUsername)
	if err := store.Clear(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		slog.Error("failed to clear session", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.publish(ctx, models.EventLoggedOut, username)
	return nil
}

// store puts the credential under a fresh session id, so an id known
// before authentication never carries one.
func (s *sessionService) store(ctx context.Context, store repository.SessionStore, cred models.Credential) error {
	renewed, err := repository.Renew(ctx, store)
	if err != nil {
		slog.Error("failed to renew session", "error", err)
		return fmt.Errorf("failed to renew session: %w", err)
	}
	if err := repository.SaveCredential(ctx, renewed, cred); err != nil {
		slog.Error("failed to store credential", "error", err)
		return err
	}
	return nil
}

func (s *sessionService) publish(ctx context.Context, t models.SessionEventType, username string) {
	event := models.SessionEvent{
		Type:      t,
		SessionID: repository.SessionIDFrom(ctx),
		Username:  username,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish session event", "event_type", t, "error", err)
	}
}

func validCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
