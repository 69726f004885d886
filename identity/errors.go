package identity

import (
	"errors"
	"fmt"
)

// ErrorCode is the classification code supplied by the identity provider.
type ErrorCode string

const (
	CodeNotAuthenticated   ErrorCode = "NotAuthenticated"
	CodeUsernameExists     ErrorCode = "UsernameExistsException"
	CodeCodeMismatch       ErrorCode = "CodeMismatchException"
	CodeExpiredCode        ErrorCode = "ExpiredCodeException"
	CodeUserNotConfirmed   ErrorCode = "UserNotConfirmedException"
	CodeNotAuthorized      ErrorCode = "NotAuthorizedException"
	CodeUserNotFound       ErrorCode = "UserNotFoundException"
	CodeInvalidParameter   ErrorCode = "InvalidParameterException"
	CodeInvalidPassword    ErrorCode = "InvalidPasswordException"
	CodeServiceUnavailable ErrorCode = "ServiceUnavailable"
)

// ProviderError is an identity provider failure carrying its classification code.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches another ProviderError by code so sentinels work with errors.Is.
func (e *ProviderError) Is(target error) bool {
	var other *ProviderError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewError creates a ProviderError.
func NewError(code ErrorCode, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// WrapError creates a ProviderError around a cause.
func WrapError(code ErrorCode, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

// ErrNotAuthenticated is returned when no identity is signed in.
var ErrNotAuthenticated = NewError(CodeNotAuthenticated, "The user is not authenticated")

// CodeOf returns the provider code in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// MessageOf returns the provider message in err's chain, or "" when there is none.
func MessageOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}
