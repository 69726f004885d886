package session

import (
	"fmt"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/pkg/errors"
)

// Op names a store operation
type Op string

const (
	OpResolve Op = "resolve"
	OpRefresh Op = "refresh"
	OpSignup  Op = "signup"
	OpConfirm Op = "confirm"
	OpLogin   Op = "login"
	OpLogout  Op = "logout"
)

// FailureKind classifies a failed operation
type FailureKind string

const (
	KindDuplicateAccount   FailureKind = "duplicate-account"
	KindInvalidCode        FailureKind = "invalid-code"
	KindExpiredCode        FailureKind = "expired-code"
	KindUnconfirmedAccount FailureKind = "unconfirmed-account"
	KindBadCredentials     FailureKind = "bad-credentials"
	KindUnknownAccount     FailureKind = "unknown-account"
	KindInvalidPassword    FailureKind = "invalid-password"
	KindInvalidParameter   FailureKind = "invalid-parameter"
	KindGeneric            FailureKind = "generic"
)

// Error is a classified operation failure. Message is the text shown to the user.
type Error struct {
	Op      Op
	Kind    FailureKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err is not a classified failure
func KindOf(err error) FailureKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

type classification struct {
	kind    FailureKind
	message string
}

// classifications maps provider codes to failure kinds per operation. An empty
// message keeps the provider's own.
var classifications = map[Op]map[identity.ErrorCode]classification{
	OpSignup: {
		identity.CodeUsernameExists:   {KindDuplicateAccount, "An account with this email already exists."},
		identity.CodeInvalidPassword:  {KindInvalidPassword, ""},
		identity.CodeInvalidParameter: {KindInvalidParameter, ""},
	},
	OpConfirm: {
		identity.CodeCodeMismatch:     {KindInvalidCode, "Invalid confirmation code. Please try again."},
		identity.CodeExpiredCode:      {KindExpiredCode, "Confirmation code has expired. Please request a new one."},
		identity.CodeInvalidParameter: {KindInvalidParameter, ""},
	},
	OpLogin: {
		identity.CodeUserNotConfirmed: {KindUnconfirmedAccount, "Please confirm your email address first."},
		identity.CodeNotAuthorized:    {KindBadCredentials, "Incorrect email or password."},
		identity.CodeUserNotFound:     {KindUnknownAccount, "No account found with this email."},
	},
}

var genericMessages = map[Op]string{
	OpSignup:  "Failed to sign up",
	OpConfirm: "Failed to confirm signup",
	OpLogin:   "Failed to log in",
	OpLogout:  "Failed to log out",
}

// classify wraps a provider failure. Failures without a fixed message use the
// provider message when there is one.
func classify(op Op, err error) *Error {
	c, ok := classifications[op][identity.CodeOf(err)]
	if !ok {
		c.kind = KindGeneric
	}

	message := c.message
	if message == "" {
		message = identity.MessageOf(err)
	}
	if message == "" {
		message = genericMessages[op]
	}
	if message == "" {
		message = "Something went wrong"
	}
	return &Error{Op: op, Kind: c.kind, Message: message, Err: err}
}
