package domain

import "errors"

// Sentinel errors for the core API. The presentation layer maps these to
// transport status codes; services wrap them with context via fmt.Errorf
// and %w so errors.Is still matches.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidScore       = errors.New("score out of range")
	ErrNoMatchingRecords  = errors.New("no matching grade records")
)
