package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUpstream   = New("UPSTREAM_ERROR", http.StatusBadGateway, "backend request failed")
	ErrCacheMiss  = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of err carrying the given detail lines.
func WithDetails(err *Error, details []string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = append([]string(nil), details...)
	return &clone
}

// FieldErrors maps a field name to its validation messages, the shape the
// academy backend returns on 4xx.
type FieldErrors map[string][]string

// Lines flattens the map into "field: msg1 msg2" lines sorted by field name.
func (f FieldErrors) Lines() []string {
	if len(f) == 0 {
		return nil
	}
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", field, strings.Join(f[field], " ")))
	}
	return lines
}

// Flatten joins Lines with newlines.
func (f FieldErrors) Flatten() string {
	return strings.Join(f.Lines(), "\n")
}

// Validation builds a VALIDATION_ERROR whose message is the flattened field
// errors and whose details are the individual lines.
func Validation(fields FieldErrors, cause error) *Error {
	out := Wrap(cause, ErrValidation.Code, ErrValidation.Status, ErrValidation.Message)
	if flat := fields.Flatten(); flat != "" {
		out.Message = flat
	}
	out.Details = fields.Lines()
	return out
}
