// Package apperr defines the error kinds services return so the HTTP
// layer can pick a status code without inspecting messages
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindServer Kind = iota
	KindAuthenticationRequired
	KindInvalidToken
	KindInvalidCredentials
	KindAdminRequired
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindServiceUnavailable
)

var statuses = map[Kind]int{
	KindServer:                 http.StatusInternalServerError,
	KindAuthenticationRequired: http.StatusUnauthorized,
	KindInvalidToken:           http.StatusForbidden,
	KindInvalidCredentials:     http.StatusUnauthorized,
	KindAdminRequired:          http.StatusForbidden,
	KindForbidden:              http.StatusForbidden,
	KindNotFound:               http.StatusNotFound,
	KindConflict:               http.StatusConflict,
	KindValidation:             http.StatusBadRequest,
	KindServiceUnavailable:     http.StatusServiceUnavailable,
}

// Status returns the HTTP status code for k
func (k Kind) Status() int {
	if s, ok := statuses[k]; ok {
		return s
	}

	return http.StatusInternalServerError
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap attaches the underlying cause to a client-facing message. The cause
// is logged but never sent to the client.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Conflict(msg string) *Error   { return New(KindConflict, msg) }
func Validation(msg string) *Error { return New(KindValidation, msg) }
func Forbidden(msg string) *Error  { return New(KindForbidden, msg) }

// Server wraps an unexpected failure as a 500 with the generic message
func Server(err error) *Error {
	return Wrap(KindServer, "Server error", err)
}

// KindOf reports the kind of err, or KindServer when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindServer
}

// Is reports whether err carries kind k
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
