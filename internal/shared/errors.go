package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor lacks the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrRefused indicates a workflow precondition was not met.
	ErrRefused = errors.New("operation refused")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// Refusal carries the precondition that blocked a workflow operation.
// A refusal means the request was understood and rejected before any
// state change; it is distinct from a persistence failure.
type Refusal struct {
	Reason string
}

func (r *Refusal) Error() string {
	return r.Reason
}

// Unwrap lets errors.Is match ErrRefused.
func (r *Refusal) Unwrap() error {
	return ErrRefused
}

// Refuse builds a Refusal with a formatted reason.
func Refuse(format string, args ...any) error {
	return &Refusal{Reason: fmt.Sprintf(format, args...)}
}
