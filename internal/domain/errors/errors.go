// Package errors carries the error taxonomy exposed at the API boundary.
// Storage and token failures are wrapped into one of these kinds where
// their business meaning is known; raw driver errors never reach callers.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindAlreadyExists
	KindInvalidArgument
	KindFailedPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindFailedPrecondition:
		return "failed_precondition"
	default:
		return "internal"
	}
}

// Error is a kinded error with a caller-safe message. Err, when set,
// holds the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two taxonomy errors by kind and message,
// so sentinels below behave as comparable targets after wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// E builds a taxonomy error.
func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a taxonomy error.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind, defaulting to internal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err. Foreign errors get
// a generic message so driver details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Sentinel errors for the recurring cases. ErrWrongCredentials is shared
// by unknown-user and wrong-password so the two are indistinguishable.
var (
	ErrWrongCredentials = E(KindUnauthenticated, "wrong username or password")
	ErrNoToken          = E(KindUnauthenticated, "no token provided")
	ErrInvalidToken     = E(KindUnauthenticated, "token is invalid")
	ErrExpiredToken     = E(KindUnauthenticated, "token is expired")
	ErrSessionNotFound  = E(KindUnauthenticated, "no session found for given token")
	ErrNoAccess         = E(KindPermissionDenied, "user does not have access to project")
)
