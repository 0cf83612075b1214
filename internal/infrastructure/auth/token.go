package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/honeynil/SocialWorld-web/internal/models"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

var parser = jwt.NewParser()

// DecodeToken reads the claims of a compact JWT without verifying its
// signature. The front-end never holds the signing key; the remote API
// re-validates the token on every call.
func DecodeToken(raw string) (models.TokenClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(raw, claims)
	if err != nil && !tolerable(err) {
		return models.TokenClaims{}, fmt.Errorf("%w: %v", pkgerrors.ErrTokenMalformed, err)
	}

	exp, err := expiry(claims)
	if err != nil {
		return models.TokenClaims{}, err
	}

	out := models.TokenClaims{ExpiresAt: exp}
	if id, ok := claims["userId"].(float64); ok {
		out.UserID = int64(id)
	}
	if name, ok := claims["username"].(string); ok {
		out.Username = name
	}
	return out, nil
}

// Bounds of a representable expiry. Numeric exp values beyond them are
// clamped: time.Unix overflows long before a float64 does.
var (
	maxExpiry = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	minExpiry = time.Unix(0, 0).UTC()
)

func expiry(claims jwt.MapClaims) (time.Time, error) {
	raw, ok := claims["exp"]
	if !ok {
		return time.Time{}, pkgerrors.ErrTokenMissingExpiry
	}
	if v, ok := raw.(float64); ok {
		switch {
		case v > float64(maxExpiry.Unix()):
			return maxExpiry, nil
		case v < float64(minExpiry.Unix()):
			return minExpiry, nil
		}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, pkgerrors.ErrTokenInvalidExpiry
	}
	return exp.Time, nil
}

// tolerable reports parse errors raised after the claims were decoded.
// An unknown or missing alg header only matters for verification.
func tolerable(err error) bool {
	return errors.Is(err, jwt.ErrTokenUnverifiable)
}
