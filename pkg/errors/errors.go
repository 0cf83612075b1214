package errors

import (
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrNilStore           = errors.New("session store is nil")
	ErrEmptySessionID     = errors.New("session id is empty")
	ErrNoCredential       = errors.New("no credential stored")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrTokenMalformed     = errors.New("token is malformed")
	ErrTokenMissingExpiry = errors.New("token has no exp claim")
	ErrTokenInvalidExpiry = errors.New("token exp claim is not numeric")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrRemoteUnavailable  = errors.New("remote api unavailable")
	ErrNoPendingEmail     = errors.New("no pending email to verify")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrInvalidCode        = fmt.Errorf("%w: verification code must be 4 digits", ErrInvalidInput)
	ErrEmptyPost          = fmt.Errorf("%w: post has neither content nor media", ErrInvalidInput)
	ErrUnknownBackend     = fmt.Errorf("unknown session backend")
)
