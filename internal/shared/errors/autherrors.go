package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	ErrorTypeTokenExpired ErrorType = "token_expired"
	ErrorTypeTokenInvalid ErrorType = "token_invalid"
)

// AuthError is an AppError raised while authenticating an operator.
type AuthError struct {
	*AppError
	// ShouldLog is false for expected failures such as an expired token
	ShouldLog bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewTokenExpiredError creates an error for expired tokens
func NewTokenExpiredError(tokenType string) *AuthError {
	return &AuthError{
		AppError:  newAppError(ErrorTypeTokenExpired, http.StatusUnauthorized, fmt.Sprintf("%s has expired", tokenType), []string{"Please login again"}),
		ShouldLog: false,
	}
}

// NewTokenInvalidError creates an error for malformed, unsigned or forged tokens
func NewTokenInvalidError(tokenType string) *AuthError {
	return &AuthError{
		AppError:  newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, fmt.Sprintf("Invalid %s", tokenType), nil),
		ShouldLog: true,
	}
}

// GetAuthError extracts AuthError from the error chain
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogAuthError reports whether an authentication failure is worth logging.
// Errors that are not AuthErrors are always logged.
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}
