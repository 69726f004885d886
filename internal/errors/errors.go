package errors

import (
	"errors"
)

// Common error types shared by the repositories and adapters
var (
	// Account errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotConfirmed  = errors.New("user is not confirmed")
	ErrInvalidCredential = errors.New("invalid credentials")

	// Confirmation errors
	ErrCodeMismatch = errors.New("confirmation code mismatch")
	ErrCodeExpired  = errors.New("confirmation code expired")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
