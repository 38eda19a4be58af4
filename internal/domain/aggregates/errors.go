package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a failure independently of the transport that reports it.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "validation"
	CodeNotFound     ErrorCode = "not_found"
	CodeConflict     ErrorCode = "conflict"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeForbidden    ErrorCode = "forbidden"
	CodeInternal     ErrorCode = "internal"
)

const genericInternalMessage = "Internal server error."

// Error is the canonical coded error returned by services.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// PublicMessage is the text safe to show to API clients. Internal errors only
// expose a message that was written for the client, never the cause text.
func (e *Error) PublicMessage() string {
	if e == nil {
		return genericInternalMessage
	}
	msg := strings.TrimSpace(e.Message)
	if e.Code == CodeInternal {
		if msg == "" || (e.Cause != nil && msg == strings.TrimSpace(e.Cause.Error())) {
			return genericInternalMessage
		}
		return msg
	}
	if msg == "" {
		return string(e.Code)
	}
	return msg
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code, keeping its text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func Validation(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

func NotFound(op, message string) error {
	return NewError(CodeNotFound, op, message, nil)
}

func Conflict(op, message string) error {
	return NewError(CodeConflict, op, message, nil)
}

func Forbidden(op, message string) error {
	return NewError(CodeForbidden, op, message, nil)
}

func Unauthorized(op, message string) error {
	return NewError(CodeUnauthorized, op, message, nil)
}

func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// As extracts the outermost coded error.
func As(err error) (*Error, bool) {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return nil, false
	}
	return aggErr, true
}
