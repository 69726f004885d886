package identity

import (
	"context"
	"strings"
	"time"
)

// Role distinguishes a student account from a mentor account.
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// Attribute names understood by the identity providers
const (
	AttributeEmail      = "email"
	AttributeGivenName  = "given_name"
	AttributeFamilyName = "family_name"
	AttributeRole       = "custom:role"
)

// ParseRole maps an attribute value onto a Role. Unknown values map to RoleNone.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent
	case RoleMentor:
		return RoleMentor
	}
	return RoleNone
}

// Valid reports whether r is one of the account roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Attributes holds the user attributes held by the identity provider
type Attributes map[string]string

// Identity is the authenticated-user record returned by an identity provider.
type Identity struct {
	Username   string     `json:"username"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// Role returns the role carried by the custom:role attribute.
func (i *Identity) Role() Role {
	if i == nil {
		return RoleNone
	}
	return ParseRole(i.Attributes[AttributeRole])
}

func (i *Identity) Email() string {
	if i == nil {
		return ""
	}
	return i.Attributes[AttributeEmail]
}

// DisplayName returns "given family", falling back to the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	name := strings.TrimSpace(i.Attributes[AttributeGivenName] + " " + i.Attributes[AttributeFamilyName])
	if name == "" {
		return i.Username
	}
	return name
}

// Clone returns a deep copy so snapshots can't be mutated through shared maps.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	attrs := make(Attributes, len(i.Attributes))
	for k, v := range i.Attributes {
		attrs[k] = v
	}
	return &Identity{Username: i.Username, Attributes: attrs}
}

// Session is the token set backing an authenticated identity.
type Session struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the session has an ID token that has not expired.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.IDToken != "" && now.Before(s.ExpiresAt)
}

// Provider is the identity capability consumed by the session store.
// A Provider is bound to a single browser session.
type Provider interface {
	// CurrentIdentity returns the signed in identity or an error coded CodeNotAuthenticated
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// SignUp registers an unconfirmed account
	SignUp(ctx context.Context, username, password string, attributes Attributes) (*Identity, error)

	// ConfirmRegistration confirms an account with the code sent to the user
	ConfirmRegistration(ctx context.Context, username, code string) error

	// SignIn authenticates and records the session
	SignIn(ctx context.Context, username, password string) (*Identity, error)

	// SignOut ends the session
	SignOut(ctx context.Context) error

	// CurrentSession returns the session tokens, refreshing them when bypassCache is set
	CurrentSession(ctx context.Context, bypassCache bool) (*Session, error)
}

// Factory creates a Provider bound to a browser session.
type Factory interface {
	ForSession(sessionID string) Provider
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(sessionID string) Provider

func (f FactoryFunc) ForSession(sessionID string) Provider {
	return f(sessionID)
}

// SessionKeeper is implemented by factories that store sign-in state under
// the browser session id. It lets callers check for a stored session and move
// it to a new id.
type SessionKeeper interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
	MoveSession(ctx context.Context, fromID, toID string) error
}
