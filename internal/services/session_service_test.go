package service

import (
	"context"
	"errors"
	"testing"

	"github.com/honeynil/SocialWorld-web/internal/models"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	"github.com/honeynil/SocialWorld-web/internal/repository/memory"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	cred      models.Credential
	err       error
	verifyErr error

	gotEmail string
	gotCode  string
}

func (f *fakeAuthAPI) Login(_ context.Context, email, _ string) (models.Credential, error) {
	f.gotEmail = email
	return f.cred, f.err
}

func (f *fakeAuthAPI) Register(_ context.Context, email, _, _ string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeAuthAPI) Verify(_ context.Context, email, code string) (models.Credential, error) {
	f.gotEmail = email
	f.gotCode = code
	return f.cred, f.verifyErr
}

type recordingPublisher struct {
	events []models.SessionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.SessionEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func newStore(t *testing.T) (context.Context, repository.SessionStore) {
	t.Helper()
	store := memory.NewBackend().Open("sid-1")
	return repository.WithSession(context.Background(), "sid-1", store), store
}

func TestSessionService_Login(t *testing.T) {
	t.Run("stores credential and publishes", func(t *testing.T) {
		ctx, store := newStore(t)
		api := &fakeAuthAPI{cred: models.Credential{Token: "tok", Username: "alice"}}
		pub := &recordingPublisher{}
		svc := NewSessionService(api, pub)

		cred, err := svc.Login(ctx, store, " alice@example.com ", "pw")
		require.NoError(t, err)
		assert.Equal(t, "alice", cred.Username)
		assert.Equal(t, "alice@example.com", api.gotEmail)

		stored, err := repository.LoadCredential(ctx, store)
		require.NoError(t, err)
		assert.Equal(t, models.Credential{Token: "tok", Username: "alice"}, stored)

		require.Len(t, pub.events, 1)
		assert.Equal(t, models.EventLoggedIn, pub.events[0].Type)
		assert.Equal(t, "sid-1", pub.events[0].SessionID)
	})

	t.Run("remote failure leaves store untouched", func(t *testing.T) {
		ctx, store := newStore(t)
		api := &fakeAuthAPI{err: pkgerrors.ErrUnauthorized}
		pub := &recordingPublisher{}
		svc := NewSessionService(api, pub)

		_, err := svc.Login(ctx, store, "a@b.c", "bad")
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
		_, err = store.Get(ctx, repository.KeyToken)
		assert.ErrorIs(t, err, pkgerrors.ErrKeyNotFound)
		assert.Empty(t, pub.events)
	})

	t.Run("empty token from api is rejected", func(t *testing.T) {
		ctx, store := newStore(t)
		svc := NewSessionService(&fakeAuthAPI{cred: models.Credential{Username: "alice"}}, nil)

		_, err := svc.Login(ctx, store, "a@b.c", "pw")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredential)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctx, store := newStore(t)
		svc := NewSessionService(&fakeAuthAPI{}, nil)

		_, err := svc.Login(ctx, store, "  ", "pw")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("publish failure does not fail login", func(t *testing.T) {
		ctx, store := newStore(t)
		api := &fakeAuthAPI{cred: models.Credential{Token: "tok", Username: "alice"}}
		svc := NewSessionService(api, &recordingPublisher{err: errors.New("broker down")})

		_, err := svc.Login(ctx, store, "a@b.c", "pw")
		assert.NoError(t, err)
	})
}

func TestSessionService_RegisterAndVerify(t *testing.T) {
	ctx, store := newStore(t)
	api := &fakeAuthAPI{cred: models.Credential{Token: "tok", Username: "bob"}}
	pub := &recordingPublisher{}
	svc := NewSessionService(api, pub)

	require.NoError(t, svc.Register(ctx, store, "bob@example.com", "bob", "pw"))
	pending, err := store.Get(ctx, repository.KeyPendingEmail)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", pending)

	cred, err := svc.Verify(ctx, store, "1234")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Token)
	assert.Equal(t, "bob@example.com", api.gotEmail)
	assert.Equal(t, "1234", api.gotCode)

	_, err = store.Get(ctx, repository.KeyPendingEmail)
	assert.ErrorIs(t, err, pkgerrors.ErrKeyNotFound)
	assert.Equal(t, "tok", repository.TokenOf(ctx, store))

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventVerified, pub.events[0].Type)
}

func TestSessionService_Verify(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		pending string
		wantErr error
	}{
		{"too short", "123", "a@b.c", pkgerrors.ErrInvalidCode},
		{"too long", "12345", "a@b.c", pkgerrors.ErrInvalidCode},
		{"not digits", "12a4", "a@b.c", pkgerrors.ErrInvalidCode},
		{"no pending email", "1234", "", pkgerrors.ErrNoPendingEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := newStore(t)
			if tt.pending != "" {
				require.NoError(t, store.Set(ctx, repository.KeyPendingEmail, tt.pending))
			}
			svc := NewSessionService(&fakeAuthAPI{cred: models.Credential{Token: "tok"}}, nil)

			_, err := svc.Verify(ctx, store, tt.code)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repository.TokenOf(ctx, store))
		})
	}

	t.Run("invalid code is also invalid input", func(t *testing.T) {
		ctx, store := newStore(t)
		svc := NewSessionService(&fakeAuthAPI{}, nil)
		_, err := svc.Verify(ctx, store, "x")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("remote rejection keeps pending email", func(t *testing.T) {
		ctx, store := newStore(t)
		require.NoError(t, store.Set(ctx, repository.KeyPendingEmail, "a@b.c"))
		svc := NewSessionService(&fakeAuthAPI{verifyErr: errors.New("wrong code")}, nil)

		_, err := svc.Verify(ctx, store, "0000")
		assert.Error(t, err)
		pending, err := store.Get(ctx, repository.KeyPendingEmail)
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", pending)
	})
}

func TestSessionService_Logout(t *testing.T) {
	ctx, store := newStore(t)
	require.NoError(t, repository.SaveCredential(ctx, store, models.Credential{Token: "tok", Username: "alice"}))
	require.NoError(t, store.Set(ctx, "theme", "dark"))
	pub := &recordingPublisher{}
	svc := NewSessionService(&fakeAuthAPI{}, pub)

	require.NoError(t, svc.Logout(ctx, store))

	_, err := repository.LoadCredential(ctx, store)
	assert.ErrorIs(t, err, pkgerrors.ErrNoCredential)
	_, err = store.Get(ctx, "theme")
	assert.ErrorIs(t, err, pkgerrors.ErrKeyNotFound)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventLoggedOut, pub.events[0].Type)
	assert.Equal(t, "alice", pub.events[0].Username)
}

func TestSessionService_NilStore(t *testing.T) {
	svc := NewSessionService(&fakeAuthAPI{}, nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, nil, "a", "b")
	assert.ErrorIs(t, err, pkgerrors.ErrNilStore)
	assert.ErrorIs(t, svc.Logout(ctx, nil), pkgerrors.ErrNilStore)
}

func renewingContext(backend *memory.Backend, oldID, newID string) context.Context {
	renew := func(ctx context.Context, from string) (string, repository.SessionStore, error) {
		if err := backend.Open(from).Clear(ctx); err != nil {
			return "", nil, err
		}
		return newID, backend.Open(newID), nil
	}
	return repository.WithRenewal(context.Background(), oldID, backend.Open(oldID), renew)
}

func TestSessionService_RenewsSessionID(t *testing.T) {
	cred := models.Credential{Token: "tok", Username: "alice"}

	t.Run("login", func(t *testing.T) {
		backend := memory.NewBackend()
		ctx := renewingContext(backend, "planted", "fresh")
		pub := &recordingPublisher{}
		svc := NewSessionService(&fakeAuthAPI{cred: cred}, pub)

		_, err := svc.Login(ctx, repository.SessionFrom(ctx), "a@b.c", "pw")
		require.NoError(t, err)

		assert.Empty(t, repository.TokenOf(ctx, backend.Open("planted")))
		assert.Equal(t, "tok", repository.TokenOf(ctx, backend.Open("fresh")))
		assert.Equal(t, "fresh", repository.SessionIDFrom(ctx))
		require.Len(t, pub.events, 1)
		assert.Equal(t, "fresh", pub.events[0].SessionID)
	})

	t.Run("verify", func(t *testing.T) {
		backend := memory.NewBackend()
		ctx := renewingContext(backend, "planted", "fresh")
		require.NoError(t, backend.Open("planted").Set(ctx, repository.KeyPendingEmail, "a@b.c"))
		svc := NewSessionService(&fakeAuthAPI{cred: cred}, nil)

		_, err := svc.Verify(ctx, repository.SessionFrom(ctx), "1234")
		require.NoError(t, err)

		assert.Equal(t, 1, backend.Len())
		assert.Equal(t, "tok", repository.TokenOf(ctx, backend.Open("fresh")))
		_, err = backend.Open("fresh").Get(ctx, repository.KeyPendingEmail)
		assert.ErrorIs(t, err, pkgerrors.ErrKeyNotFound)
	})

	t.Run("renewal failure stores nothing", func(t *testing.T) {
		backend := memory.NewBackend()
		renew := func(context.Context, string) (string, repository.SessionStore, error) {
			return "", nil, errors.New("cookie write failed")
		}
		ctx := repository.WithRenewal(context.Background(), "planted", backend.Open("planted"), renew)
		svc := NewSessionService(&fakeAuthAPI{cred: cred}, nil)

		_, err := svc.Login(ctx, repository.SessionFrom(ctx), "a@b.c", "pw")
		assert.Error(t, err)
		assert.Equal(t, 0, backend.Len())
	})
}
