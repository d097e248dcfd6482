package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Configuration errors
	ErrConfigParse   ErrorType = "CONFIG_PARSE_ERROR"
	ErrConfigInvalid ErrorType = "CONFIG_INVALID_ERROR"

	// AWS errors
	ErrAWSClient      ErrorType = "AWS_CLIENT_ERROR"
	ErrAWSCredentials ErrorType = "AWS_CREDENTIALS_ERROR"
	ErrAWSEndpoint    ErrorType = "AWS_ENDPOINT_ERROR"
	ErrAWSListing     ErrorType = "AWS_LISTING_ERROR"

	// Session errors
	ErrRoleAssumption  ErrorType = "ROLE_ASSUMPTION_ERROR"
	ErrSessionNotFound ErrorType = "SESSION_NOT_FOUND_ERROR"

	// Request errors
	ErrBadRequest ErrorType = "BAD_REQUEST_ERROR"
)

// CustomError represents a custom error with additional context
type CustomError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	WrappedErr error
}

// New creates a new custom error
func New(errorType ErrorType, message string, context map[string]interface{}, wrappedErr error) *CustomError {
	return &CustomError{
		Type:       errorType,
		Message:    message,
		Context:    context,
		WrappedErr: wrappedErr,
	}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.WrappedErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.WrappedErr)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Detail is the message shown to API callers. The upstream cause is appended
// unless redact is set.
func (e *CustomError) Detail(redact bool) string {
	if e.WrappedErr == nil || redact {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.WrappedErr)
}

// Unwrap returns the wrapped error
func (e *CustomError) Unwrap() error {
	return e.WrappedErr
}

// Is reports whether any CustomError in err's chain has the given type.
func Is(err error, errType ErrorType) bool {
	for err != nil {
		var customErr *CustomError
		if !stderrors.As(err, &customErr) {
			return false
		}
		if customErr.Type == errType {
			return true
		}
		err = customErr.WrappedErr
	}
	return false
}

// As returns the outermost CustomError in err's chain.
func As(err error) (*CustomError, bool) {
	var customErr *CustomError
	if stderrors.As(err, &customErr) {
		return customErr, true
	}
	return nil, false
}
