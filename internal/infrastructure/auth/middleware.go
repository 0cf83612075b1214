package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/honeynil/SocialWorld-web/internal/gate"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	"github.com/honeynil/SocialWorld-web/internal/repository"
)

type CookieOptions struct {
	Name   string
	Secret []byte
	Secure bool
	MaxAge time.Duration
}

const sessionIDValue = "sid"

// SessionCookies carries the session id in a signed cookie. The values of
// the session itself live server-side in a repository.SessionBackend.
type SessionCookies struct {
	store *sessions.CookieStore
	name  string
}

func NewSessionCookies(opts CookieOptions) *SessionCookies {
	store := sessions.NewCookieStore(opts.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(opts.MaxAge.Seconds()))
	return &SessionCookies{store: store, name: opts.Name}
}

// SessionID returns the id carried by r. A missing, tampered or foreign
// cookie yields "".
func (c *SessionCookies) SessionID(r *http.Request) string {
	sess, err := c.store.New(r, c.name)
	if err != nil || sess.IsNew {
		return ""
	}
	sid, _ := sess.Values[sessionIDValue].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return ""
	}
	return sid
}

// Issue sets a cookie carrying sid, replacing whatever r carried.
func (c *SessionCookies) Issue(w http.ResponseWriter, r *http.Request, sid string) error {
	sess := sessions.NewSession(c.store, c.name)
	opts := *c.store.Options
	sess.Options = &opts
	sess.Values[sessionIDValue] = sid
	if err := c.store.Save(r, w, sess); err != nil {
		return fmt.Errorf("failed to write session cookie: %w", err)
	}
	return nil
}

// SessionMiddleware binds every request to a browser session. A request
// without a valid cookie starts a fresh session id. The bound session can be
// renewed, which moves it to a new id and drops the old one.
func SessionMiddleware(backend repository.SessionBackend, opts CookieOptions) func(http.Handler) http.Handler {
	cookies := NewSessionCookies(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := cookies.SessionID(r)
			if sid == "" {
				sid = uuid.NewString()
				if err := cookies.Issue(w, r, sid); err != nil {
					slog.Error("failed to issue session", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
			}

			renew := func(ctx context.Context, oldID string) (string, repository.SessionStore, error) {
				fresh := uuid.NewString()
				if err := backend.Open(oldID).Clear(ctx); err != nil {
					return "", nil, fmt.Errorf("failed to drop session: %w", err)
				}
				if err := cookies.Issue(w, r, fresh); err != nil {
					return "", nil, err
				}
				return fresh, backend.Open(fresh), nil
			}
			ctx := repository.WithRenewal(r.Context(), sid, backend.Open(sid), renew)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GateMiddleware admits protected views only for sessions holding a live
// credential. Denials redirect and are counted, never logged.
func GateMiddleware(g *gate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var src gate.TokenSource
			if store := repository.SessionFrom(r.Context()); store != nil {
				src = store
			}
			d := g.Evaluate(r.Context(), src)
			observability.GateDecisions.WithLabelValues(d.Outcome.String(), string(d.Reason)).Inc()
			if !d.Admitted() {
				http.Redirect(w, r, d.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
