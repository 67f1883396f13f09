// Package apperr defines the error kinds returned by services and how they
// map onto HTTP status codes
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindTooLarge
	KindTooManyRequests
)

// Error is an error with a kind and a message that is safe to show to clients.
// Err holds the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails attaches extra messages that end up in the "errors" field of
// the response envelope
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func BadRequest(msg string) *Error {
	return New(KindBadRequest, msg, nil)
}

func Unauthorized(msg string, err error) *Error {
	return New(KindUnauthorized, msg, err)
}

func NotFound(msg string) *Error {
	return New(KindNotFound, msg, nil)
}

func Conflict(msg string) *Error {
	return New(KindConflict, msg, nil)
}

func TooLarge(msg string) *Error {
	return New(KindTooLarge, msg, nil)
}

func TooManyRequests(msg string) *Error {
	return New(KindTooManyRequests, msg, nil)
}

// Internal wraps an unexpected failure. The message is what the client sees,
// err is what gets logged.
func Internal(msg string, err error) *Error {
	return New(KindInternal, msg, err)
}

// From returns the *Error somewhere in err's chain. Anything that isn't one
// becomes an internal error with a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Internal("Internal server error", err)
}

// KindNone is what KindOf reports for a nil error
const KindNone Kind = -1

// KindOf reports the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	return From(err).Kind
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
