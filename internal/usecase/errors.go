package usecase

import (
	"errors"
	"fmt"
)

// Failure modes surfaced by the auth core. Handlers map these to HTTP
// statuses; none of them is retried internally.
var (
	// ErrInvalidCredentials deliberately covers unknown email, missing
	// password hash and wrong password alike, so responses cannot be
	// used to enumerate accounts.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountNotActive     = errors.New("account is not active")
	ErrEmailAlreadyUsed     = errors.New("email already in use")
	ErrSessionNotFound      = errors.New("session not found")
	ErrHashMismatch         = errors.New("session hash mismatch")
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectOldPassword = errors.New("incorrect old password")
	ErrResetNotFound        = errors.New("password reset request not found")
	ErrResetExpired         = errors.New("password reset request expired")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidToken         = errors.New("invalid token")
)

// ValidationError carries field-level detail for payloads that are
// well-formed but semantically wrong (e.g. a password change without
// the old password).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
