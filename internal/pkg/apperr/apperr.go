package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
	KindNoContent
	KindUnauthorized
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Err: fmt.Errorf(format, args...)}
}

func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(code, format string, args ...interface{}) *Error {
	return New(KindValidation, code, format, args...)
}

func NotFound(code, format string, args ...interface{}) *Error {
	return New(KindNotFound, code, format, args...)
}

func Permission(code, format string, args ...interface{}) *Error {
	return New(KindPermission, code, format, args...)
}

func Conflict(code, format string, args ...interface{}) *Error {
	return New(KindConflict, code, format, args...)
}

func NoContent(code, format string, args ...interface{}) *Error {
	return New(KindNoContent, code, format, args...)
}

func Unauthorized(code, format string, args ...interface{}) *Error {
	return New(KindUnauthorized, code, format, args...)
}

func Internal(code string, err error) *Error {
	return Wrap(KindInternal, code, err)
}

// KindOf reports the classification of err, defaulting to KindInternal for
// anything the service layer did not classify.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal_error"
}
