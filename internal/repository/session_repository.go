package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeynil/SocialWorld-web/internal/models"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

// Well-known keys held by a browser session.
const (
	KeyToken        = "token"
	KeyUsername     = "username"
	KeyPendingEmail = "pendingEmail"
)

// SessionStore holds the state of one browser session.
// Get returns pkgerrors.ErrKeyNotFound for a missing key.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SessionBackend binds stores to session ids.
type SessionBackend interface {
	Open(sessionID string) SessionStore
	Close() error
}

// LoadCredential returns ErrNoCredential when no token is stored.
// The username is advisory and may be empty.
func LoadCredential(ctx context.Context, store SessionStore) (models.Credential, error) {
	if store == nil {
		return models.Credential{}, pkgerrors.ErrNilStore
	}
	token, err := store.Get(ctx, KeyToken)
	if errors.Is(err, pkgerrors.ErrKeyNotFound) || (err == nil && token == "") {
		return models.Credential{}, pkgerrors.ErrNoCredential
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to read token: %w", err)
	}
	username, err := store.Get(ctx, KeyUsername)
	if err != nil && !errors.Is(err, pkgerrors.ErrKeyNotFound) {
		return models.Credential{}, fmt.Errorf("failed to read username: %w", err)
	}
	return models.Credential{Token: token, Username: username}, nil
}

func SaveCredential(ctx context.Context, store SessionStore, cred models.Credential) error {
	if store == nil {
		return pkgerrors.ErrNilStore
	}
	if cred.Token == "" {
		return fmt.Errorf("%w: empty token", pkgerrors.ErrInvalidCredential)
	}
	if err := store.Set(ctx, KeyToken, cred.Token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := store.Set(ctx, KeyUsername, cred.Username); err != nil {
		// токен без имени не оставляем
		if cerr := ClearCredential(ctx, store); cerr != nil {
			return fmt.Errorf("failed to store username: %w (rollback: %v)", err, cerr)
		}
		return fmt.Errorf("failed to store username: %w", err)
	}
	return nil
}

// ClearCredential removes the token and the cached username. Other keys of
// the session stay.
func ClearCredential(ctx context.Context, store SessionStore) error {
	if store == nil {
		return pkgerrors.ErrNilStore
	}
	if err := store.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if err := store.Delete(ctx, KeyUsername); err != nil {
		return fmt.Errorf("failed to delete username: %w", err)
	}
	return nil
}

// TokenOf is LoadCredential for views that only need the bearer snapshot.
// Any failure yields an empty token.
func TokenOf(ctx context.Context, store SessionStore) string {
	cred, err := LoadCredential(ctx, store)
	if err != nil {
		return ""
	}
	return cred.Token
}
