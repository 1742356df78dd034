package apperr

import (
	"errors"
	"fmt"
)

// Sentinels for the error categories the write/read paths can surface.
// NotFoundOrForbidden is deliberately one category: update/delete on a
// record you do not own answers exactly like a record that does not exist,
// so ownership cannot be probed.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrNotFoundOrForbidden = errors.New("not found or not the creator")
	ErrUpstream            = errors.New("upstream failure")
)

type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{
		Code: "invalid_input",
		Err:  fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...)),
	}
}

func Unauthorized(msg string) *Error {
	return &Error{
		Code: "unauthorized",
		Err:  fmt.Errorf("%w: %s", ErrUnauthorized, msg),
	}
}

func NotFound(resource, id string) *Error {
	return &Error{
		Code: "not_found",
		Err:  fmt.Errorf("%w: %s %s", ErrNotFound, resource, id),
	}
}

func NotFoundOrForbidden(resource string) *Error {
	return &Error{
		Code: "not_found",
		Err:  fmt.Errorf("%s %w", resource, ErrNotFoundOrForbidden),
	}
}

// Upstream marks a canonical-store or identity-provider failure that aborts
// the whole operation. Propagation failures never go through here; they ride
// back on the write receipt instead.
func Upstream(stage string, err error) *Error {
	return &Error{
		Code: "upstream_failure",
		Err:  fmt.Errorf("%w: %s: %v", ErrUpstream, stage, err),
	}
}
