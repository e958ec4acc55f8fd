package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error at the request boundary.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindConflict              Kind = "conflict"
	KindDependencyUnavailable Kind = "dependency_unavailable"
)

// Error is the error type returned by application services. Message is safe to show to callers.
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

// Is matches another *Error of the same kind and message, so package-level sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func Invalid(msg string) *Error  { return &Error{Kind: KindInvalidInput, Message: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Unavailable wraps a failure of an external collaborator (storage, ledger, cache).
func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindDependencyUnavailable, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a kind to its response status. Unknown kinds map to 500.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindDependencyUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
