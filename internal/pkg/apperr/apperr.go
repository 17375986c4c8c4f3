package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable machine-readable error category exposed to callers.
type Kind string

const (
	NotFound   Kind = "NOT_FOUND"
	Validation Kind = "VALIDATION_ERROR"
	Conflict   Kind = "CONFLICT"
	Auth       Kind = "AUTH_ERROR"
	Internal   Kind = "INTERNAL"
)

// Error carries a kind, a human-readable message, and optional detail fields for the
// caller to correct its input (e.g. the current period id on a CONFLICT).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with no details.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches detail fields and returns the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// KindOf extracts the Kind from err; unrecognized errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// DetailsOf extracts detail fields from err, nil when absent.
func DetailsOf(err error) map[string]interface{} {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return 404
	case Validation:
		return 400
	case Conflict:
		return 409
	case Auth:
		return 403
	default:
		return 500
	}
}

// Message returns the caller-facing message; internal errors are masked.
func Message(err error) string {
	if KindOf(err) == Internal {
		return "Internal Server Error"
	}
	return err.Error()
}
