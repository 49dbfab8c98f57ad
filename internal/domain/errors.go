package domain

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error kinds surfaced by the account subsystem. Callers classify with errors.Is;
// the oops wrapper carries the public message and a stable code.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
)

// Public messages shared by the credential checks and the storage layer.
const (
	MsgUsernameTaken       = "Username already taken."
	MsgEmailTaken          = "Email already taken."
	MsgHostCredentialTaken = "Username or email already taken."
)

// NotFound builds a coded NotFound error with a public message.
func NotFound(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrNotFound)
}

// AlreadyExists builds a coded AlreadyExists error with a public message.
func AlreadyExists(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrAlreadyExists)
}

// Unauthorized builds a coded credential-mismatch error with a public message.
func Unauthorized(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrUnauthorized)
}

// Unauthenticated builds a coded missing-identity error with a public message.
func Unauthenticated(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrUnauthenticated)
}

// Forbidden builds a coded access-denied error with a public message.
func Forbidden(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrForbidden)
}

// Invalid builds a coded invalid-input error with a public message.
func Invalid(code, msg string) error {
	return oops.Code(code).Public(msg).Wrap(ErrInvalidInput)
}

var kinds = []error{ErrNotFound, ErrAlreadyExists, ErrUnauthorized, ErrUnauthenticated, ErrForbidden, ErrInvalidInput}

// IsKnown reports whether err belongs to one of the account error kinds.
func IsKnown(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Message returns the public message attached to err, falling back to the
// sentinel text for uncoded errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if o, ok := oops.AsOops(err); ok {
		if pub := o.Public(); pub != "" {
			return pub
		}
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}

// Code returns the oops code attached to err, if any.
func Code(err error) string {
	if o, ok := oops.AsOops(err); ok {
		if c := fmt.Sprint(o.Code()); c != "<nil>" {
			return c
		}
	}
	return ""
}
