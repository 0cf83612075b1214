package repository

import "context"

type sessionCtxKey struct{}

// RenewFunc moves a session to a fresh id and returns the new id and store.
type RenewFunc func(ctx context.Context, oldID string) (string, SessionStore, error)

type sessionRef struct {
	id    string
	store SessionStore
	renew RenewFunc
}

// WithSession attaches the request's session to ctx.
func WithSession(ctx context.Context, id string, store SessionStore) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, &sessionRef{id: id, store: store})
}

// WithRenewal attaches the request's session together with a way to rotate
// its id.
func WithRenewal(ctx context.Context, id string, store SessionStore, renew RenewFunc) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, &sessionRef{id: id, store: store, renew: renew})
}

// SessionFrom returns the store attached by WithSession, or nil.
func SessionFrom(ctx context.Context) SessionStore {
	if ref := refFrom(ctx); ref != nil {
		return ref.store
	}
	return nil
}

func SessionIDFrom(ctx context.Context) string {
	if ref := refFrom(ctx); ref != nil {
		return ref.id
	}
	return ""
}

// Renew rotates the request's session id before a credential is stored.
// Without a renewal hook in ctx, store is returned unchanged.
func Renew(ctx context.Context, store SessionStore) (SessionStore, error) {
	ref := refFrom(ctx)
	if ref == nil || ref.renew == nil {
		return store, nil
	}
	id, next, err := ref.renew(ctx, ref.id)
	if err != nil {
		return nil, err
	}
	ref.id, ref.store = id, next
	return next, nil
}

func refFrom(ctx context.Context) *sessionRef {
	ref, _ := ctx.Value(sessionCtxKey{}).(*sessionRef)
	return ref
}
