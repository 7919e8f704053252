// Package apperrors carries the failure taxonomy every request path maps
// onto: a kind, an HTTP status and a user-facing Thai message. Internal
// detail stays on the wrapped error and never reaches the client.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindBusinessRule
	KindUnauthorized
	KindInternal
)

const internalMessage = "เกิดข้อผิดพลาดภายในระบบ กรุณาลองใหม่อีกครั้ง"

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

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBusinessRule:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func BusinessRule(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// StatusOf maps any error to the HTTP status a handler should write.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the localized message for the caller. Unclassified
// errors collapse into the generic internal message.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return internalMessage
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
