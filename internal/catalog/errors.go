package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the catalog-domain error carrying a stable code, a
// human-readable message and the underlying cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ============================================
// ERROR CODES
// ============================================

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeUpload     = "UPLOAD_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
)

// ============================================
// ERROR FACTORY FUNCTIONS
// ============================================

// NewMissingField flags a required field that is absent or blank.
func NewMissingField(field string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// NewInvalidID flags a malformed identifier. label is the field name
// as shown to the client (e.g. "Generic", "Brand").
func NewInvalidID(label string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Invalid %s ID", label),
	}
}

func NewValidation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewUpload wraps an object-store upload failure.
func NewUpload(field string, err error) *Error {
	return &Error{
		Code:    CodeUpload,
		Message: fmt.Sprintf("Failed to upload %s", field),
		Err:     err,
	}
}

func NewNotFound(entity string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", entity),
	}
}

// NewConflict flags a singleton that already exists.
func NewConflict(entity string) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s already exists", entity),
	}
}

// ============================================
// ERROR CHECKING
// ============================================

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotFound
}

func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeValidation
}

func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeConflict
}

// MapErrorToHTTP converts a catalog error into an HTTP status and a
// client-facing message. Unanticipated errors surface their raw
// message with a 500; this is an internal admin tool and the
// simplification is deliberate.
func MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return http.StatusOK, "Success"
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Code {
		case CodeValidation, CodeUpload, CodeConflict:
			return http.StatusBadRequest, e.Message
		case CodeNotFound:
			return http.StatusNotFound, e.Message
		}
	}

	return http.StatusInternalServerError, err.Error()
}
