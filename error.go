package transpress

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EUNAVAILABLE = "unavailable"

	// Pipeline failure kinds.
	ESOURCE    = "source_unavailable"
	ETRANSLATE = "translation_failed"
	EPUBLISH   = "publish_failed"
	EAUTH      = "authentication_failed"
	EIMAGE     = "image_relocation_failed"
)

// Error represents an application-specific error. Code is a machine-readable
// error kind; Message is a human-readable description. Err optionally holds
// the underlying cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transpress error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("transpress error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
// The message is taken from err unless msg is non-empty.
func WrapError(code string, err error, msg string) *Error {
	if msg == "" && err != nil {
		msg = ErrorMessage(err)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// IsFatal reports whether err must abort the whole run rather than only the
// article being processed.
func IsFatal(err error) bool {
	switch ErrorCode(err) {
	case ESOURCE, EAUTH:
		return true
	}
	return false
}
