package session

import (
	"errors"

	"github.com/vaahan-portal/violation-portal/internal/auth"
)

var (
	// ErrMalformedToken aliases the codec error so callers need one import.
	ErrMalformedToken = auth.ErrMalformedToken
	// ErrExpiredSession means the token decoded but its exp is not in the future.
	ErrExpiredSession = errors.New("session expired")
	// ErrStorageUnavailable wraps key space failures. The session keeps
	// working in memory for the rest of the process lifetime.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)
