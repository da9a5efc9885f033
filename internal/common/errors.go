// Package common defines the error taxonomy and the response envelope shared
// by services and the HTTP layer. Callers should use errors.Is to match the
// sentinel values.
package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// request level errors, each maps to one HTTP status
	ErrorBadRequest      = errors.New("bad request")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorConflict        = errors.New("conflict")
	ErrorTooManyRequests = errors.New("too many requests")
	ErrorInternal        = errors.New("internal error")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// RequestError is a failure that is reported to the client as is: its Kind
// selects the status and Messages become the envelope's message list.
type RequestError struct {
	Kind     error
	Messages []string
}

func (e *RequestError) Error() string {
	if len(e.Messages) == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Messages[0])
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

func newRequestError(kind error, msgs ...string) *RequestError {
	return &RequestError{Kind: kind, Messages: msgs}
}

func BadRequest(msgs ...string) error   { return newRequestError(ErrorBadRequest, msgs...) }
func Unauthorized(msgs ...string) error { return newRequestError(ErrorUnauthorized, msgs...) }
func Forbidden(msgs ...string) error    { return newRequestError(ErrorForbidden, msgs...) }
func NotFound(msgs ...string) error     { return newRequestError(ErrorNotFound, msgs...) }
func Conflict(msgs ...string) error     { return newRequestError(ErrorConflict, msgs...) }

// StatusFromError maps domain errors to HTTP status codes.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, ErrorTooManyRequests):
		return http.StatusTooManyRequests
	}

	if IsUniqueViolation(err) {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// IsUniqueViolation reports whether err carries a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// MessagesFromError returns the client-facing messages for err. Anything that
// is not a RequestError is hidden behind a generic message.
func MessagesFromError(err error) []string {
	var re *RequestError
	if errors.As(err, &re) && len(re.Messages) > 0 {
		return re.Messages
	}
	switch StatusFromError(err) {
	case http.StatusNotFound:
		return []string{MsgDataNotFound}
	case http.StatusConflict:
		return []string{MsgAlreadyExists}
	case http.StatusUnauthorized:
		return []string{MsgUnauthorized}
	case http.StatusInternalServerError:
		return []string{MsgUnknownError}
	}
	return []string{err.Error()}
}
