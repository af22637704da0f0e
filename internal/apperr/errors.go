package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Authentication
	Authorization
	NotFound
)

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

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrInvalidCredentials = New(Authentication, "invalid email or password")
	ErrEmailTaken         = New(Validation, "email already in use")
	ErrInvalidToken       = New(Authentication, "invalid token")
	ErrTokenExpired       = New(Authentication, "token expired")
	ErrInvalidRefresh     = New(Authentication, "invalid or expired refresh token")
	ErrUnauthenticated    = New(Authentication, "authentication required")
	ErrForbidden          = New(Authorization, "permission denied")
	ErrUserNotFound       = New(NotFound, "user not found")
	ErrMovieNotFound      = New(NotFound, "movie not found")
	ErrActorNotFound      = New(NotFound, "actor not found")
)

// Status maps an error to the HTTP status its kind belongs to.
// Unrecognized errors are treated as internal.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for an error, hiding
// internal detail behind a generic one.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}
