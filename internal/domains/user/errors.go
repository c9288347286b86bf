package user

import (
	"errors"
	"fmt"
	"net/http"
)

// UserError is the user-domain error with a stable code.
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

var ErrInvalidCredentials = &UserError{
	Code:    "INVALID_CREDENTIALS",
	Message: "Invalid email or password",
}

var ErrEmailAlreadyExists = &UserError{
	Code:    "EMAIL_ALREADY_EXISTS",
	Message: "An account with this email already exists",
}

var ErrUserNotFound = &UserError{
	Code:    "USER_NOT_FOUND",
	Message: "User not found",
}

var ErrUserInactive = &UserError{
	Code:    "USER_INACTIVE",
	Message: "Account is deactivated",
}

// GetErrorResponse maps a user-domain error to an HTTP status and message.
func GetErrorResponse(err error) (int, string) {
	var ue *UserError
	if errors.As(err, &ue) {
		switch ue.Code {
		case "INVALID_CREDENTIALS":
			return http.StatusUnauthorized, ue.Message
		case "EMAIL_ALREADY_EXISTS":
			return http.StatusBadRequest, ue.Message
		case "USER_NOT_FOUND":
			return http.StatusNotFound, ue.Message
		case "USER_INACTIVE":
			return http.StatusForbidden, ue.Message
		}
	}
	return http.StatusInternalServerError, err.Error()
}
