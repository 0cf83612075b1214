package gate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/honeynil/SocialWorld-web/internal/gate"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/auth"
	"github.com/honeynil/SocialWorld-web/internal/models"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1_700_000_000, 0)

type mapSource struct {
	values map[string]string
	err    error
	reads  int
}

func (s *mapSource) Get(_ context.Context, key string) (string, error) {
	s.reads++
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", pkgerrors.ErrKeyNotFound
	}
	return v, nil
}

func withToken(token string) *mapSource {
	return &mapSource{values: map[string]string{gate.TokenKey: token}}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-api-secret"))
	require.NoError(t, err)
	return token
}

func newGate() *gate.Gate {
	return gate.New(auth.DecodeToken, gate.WithClock(func() time.Time { return now }))
}

func TestGate_Evaluate(t *testing.T) {
	g := newGate()
	ctx := context.Background()

	tests := []struct {
		name   string
		src    gate.TokenSource
		want   gate.Outcome
		reason gate.Reason
	}{
		{
			name:   "no token stored",
			src:    &mapSource{values: map[string]string{}},
			want:   gate.Deny,
			reason: gate.ReasonNoCredential,
		},
		{
			name:   "empty token",
			src:    withToken(""),
			want:   gate.Deny,
			reason: gate.ReasonNoCredential,
		},
		{
			name:   "future expiry",
			src:    withToken(signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix(), "userId": 7})),
			want:   gate.Admit,
			reason: gate.ReasonNone,
		},
		{
			name:   "past expiry",
			src:    withToken(signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "expiry equal to now",
			src:    withToken(signed(t, jwt.MapClaims{"exp": now.Unix()})),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "two segments",
			src:    withToken("abc.def"),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "garbage",
			src:    withToken("not a token at all"),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "missing exp",
			src:    withToken(signed(t, jwt.MapClaims{"userId": 1})),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "non-numeric exp",
			src:    withToken(signed(t, jwt.MapClaims{"exp": "tomorrow"})),
			want:   gate.Deny,
			reason: gate.ReasonInvalidCredential,
		},
		{
			name:   "store read error",
			src:    &mapSource{err: errors.New("connection reset")},
			want:   gate.Deny,
			reason: gate.ReasonNoCredential,
		},
		{
			name:   "nil source",
			src:    nil,
			want:   gate.Deny,
			reason: gate.ReasonNoCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Evaluate(ctx, tt.src)
			assert.Equal(t, tt.want, d.Outcome)
			assert.Equal(t, tt.reason, d.Reason)
			if tt.want == gate.Deny {
				assert.Equal(t, gate.LoginPath, d.Redirect)
			} else {
				assert.Empty(t, d.Redirect)
			}
		})
	}
}

// A user who logged in, left, and came back after the token lapsed.
func TestGate_TokenLapsesBetweenVisits(t *testing.T) {
	clock := now
	g := gate.New(auth.DecodeToken, gate.WithClock(func() time.Time { return clock }))
	src := withToken(signed(t, jwt.MapClaims{"exp": now.Add(30 * time.Minute).Unix()}))

	assert.True(t, g.Evaluate(context.Background(), src).Admitted())

	clock = now.Add(31 * time.Minute)
	d := g.Evaluate(context.Background(), src)
	assert.False(t, d.Admitted())
	assert.Equal(t, gate.LoginPath, d.Redirect)
}

func TestGate_DoesNotWrite(t *testing.T) {
	src := withToken(signed(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}))
	newGate().Evaluate(context.Background(), src)

	assert.Equal(t, 1, src.reads)
	assert.Contains(t, src.values, gate.TokenKey)
}

func TestGate_RecoversFromPanickingDecoder(t *testing.T) {
	g := gate.New(func(string) (models.TokenClaims, error) { panic("boom") })

	var d gate.Decision
	assert.NotPanics(t, func() { d = g.Evaluate(context.Background(), withToken("x.y.z")) })
	assert.Equal(t, gate.Deny, d.Outcome)
	assert.Equal(t, gate.ReasonInvalidCredential, d.Reason)
}

func TestGate_NilDecoder(t *testing.T) {
	d := gate.New(nil).Evaluate(context.Background(), withToken("x.y.z"))
	assert.Equal(t, gate.Deny, d.Outcome)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "admit", gate.Admit.String())
	assert.Equal(t, "deny", gate.Deny.String())
}

func TestDecide_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("admits exactly when expiry is after now",
		prop.ForAll(
			func(offset int64) bool {
				claims := models.TokenClaims{ExpiresAt: now.Add(time.Duration(offset) * time.Second)}
				return gate.Decide(claims, nil, now).Admitted() == (offset > 0)
			},
			gen.Int64Range(-10*365*24*3600, 10*365*24*3600),
		))

	properties.Property("a decode error always denies",
		prop.ForAll(
			func(offset int64, msg string) bool {
				claims := models.TokenClaims{ExpiresAt: now.Add(time.Duration(offset) * time.Second)}
				d := gate.Decide(claims, errors.New(msg), now)
				return d.Outcome == gate.Deny && d.Reason == gate.ReasonInvalidCredential && d.Redirect == gate.LoginPath
			},
			gen.Int64Range(-3600, 3600),
			gen.AlphaString(),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEvaluate_Properties(t *testing.T) {
	g := newGate()
	ctx := context.Background()
	properties := gopter.NewProperties(nil)

	properties.Property("signed tokens follow their exp claim",
		prop.ForAll(
			func(offset int64) bool {
				raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"exp": now.Unix() + offset,
				}).SignedString([]byte("k"))
				if err != nil {
					return false
				}
				return g.Evaluate(ctx, withToken(raw)).Admitted() == (offset > 0)
			},
			gen.Int64Range(-86400, 86400),
		))

	properties.Property("arbitrary input never panics and is stable",
		prop.ForAll(
			func(raw string) bool {
				src := withToken(raw)
				first := g.Evaluate(ctx, src)
				second := g.Evaluate(ctx, src)
				return first == second && (first.Admitted() || first.Redirect == gate.LoginPath)
			},
			gen.AnyString(),
		))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
