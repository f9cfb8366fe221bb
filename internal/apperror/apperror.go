// Package apperror defines the error kinds shared by the import, export and
// persistence paths, and their HTTP status mapping.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUpstream
	KindUpstreamTimeout
	KindUnavailable
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUnavailable:
		return "unavailable"
	case KindTooLarge:
		return "too_large"
	default:
		return "internal"
	}
}

// Error carries a user-facing message and the wrapped cause.
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

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message, nil) }

func NotFound(message string) *Error { return New(KindNotFound, message, nil) }

func Upstream(message string, err error) *Error { return New(KindUpstream, message, err) }

func UpstreamTimeout(message string, err error) *Error {
	return New(KindUpstreamTimeout, message, err)
}

func Unavailable(message string) *Error { return New(KindUnavailable, message, nil) }

func TooLarge(message string) *Error { return New(KindTooLarge, message, nil) }

func Internal(message string, err error) *Error { return New(KindInternal, message, err) }

// KindOf returns the kind of the first *Error in the chain. Deadline errors
// without one count as upstream timeouts.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUpstreamTimeout
	}
	return KindInternal
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "upstream request timed out"
	}
	return "internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf is HTTPStatus(KindOf(err)).
func StatusOf(err error) int { return HTTPStatus(KindOf(err)) }
