// Package gate decides whether a browser session may enter a protected view.
//
// The decision is local and synchronous: it reads the stored token, decodes
// its expiry without verifying the signature, and compares it with the wall
// clock. It is a UX gate, not a security boundary. The remote API validates
// the token on every call regardless of what the gate decided.
package gate

import (
	"context"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

// LoginPath is where denied navigations are sent.
const LoginPath = "/login"

type Outcome int

const (
	Deny Outcome = iota
	Admit
)

func (o Outcome) String() string {
	if o == Admit {
		return "admit"
	}
	return "deny"
}

type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoCredential      Reason = "no_credential"
	ReasonInvalidCredential Reason = "invalid_credential"
)

type Decision struct {
	Outcome  Outcome
	Reason   Reason
	Redirect string
}

func (d Decision) Admitted() bool {
	return d.Outcome == Admit
}

func admit() Decision {
	return Decision{Outcome: Admit}
}

func deny(reason Reason) Decision {
	return Decision{Outcome: Deny, Reason: reason, Redirect: LoginPath}
}

// TokenSource is the read side of a session store.
type TokenSource interface {
	Get(ctx context.Context, key string) (string, error)
}

// TokenKey is the well-known session key holding the bearer token.
const TokenKey = "token"

// Decoder turns a raw token into claims. It must not verify signatures
// against a key the front-end does not have.
type Decoder func(raw string) (models.TokenClaims, error)

type Gate struct {
	decode Decoder
	now    func() time.Time
}

type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func New(decode Decoder, opts ...Option) *Gate {
	g := &Gate{decode: decode, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate never fails: a missing store, a read error, an empty or
// undecodable token all collapse to Deny. It does not write to src.
func (g *Gate) Evaluate(ctx context.Context, src TokenSource) (d Decision) {
	defer func() {
		if recover() != nil {
			d = deny(ReasonInvalidCredential)
		}
	}()
	if src == nil {
		return deny(ReasonNoCredential)
	}
	raw, err := src.Get(ctx, TokenKey)
	if err != nil || raw == "" {
		return deny(ReasonNoCredential)
	}
	if g.decode == nil {
		return deny(ReasonInvalidCredential)
	}
	claims, err := g.decode(raw)
	return Decide(claims, err, g.now())
}

// Decide is the pure part of the gate, over a typed decode result.
func Decide(claims models.TokenClaims, decodeErr error, now time.Time) Decision {
	if decodeErr != nil {
		return deny(ReasonInvalidCredential)
	}
	if claims.Expired(now) {
		return deny(ReasonInvalidCredential)
	}
	return admit()
}
