package identity_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	require.Equal(t, identity.RoleStudent, identity.ParseRole("student"))
	require.Equal(t, identity.RoleMentor, identity.ParseRole(" Mentor "))
	require.Equal(t, identity.RoleNone, identity.ParseRole("admin"))
	require.Equal(t, identity.RoleNone, identity.ParseRole(""))
	require.Equal(t, "none", identity.RoleNone.String())
}

func TestIdentity_Accessors(t *testing.T) {
	id := &identity.Identity{
		Username: "jane@example.com",
		Attributes: identity.Attributes{
			identity.AttributeEmail:      "jane@example.com",
			identity.AttributeGivenName:  "Jane",
			identity.AttributeFamilyName: "Doe",
			identity.AttributeRole:       "mentor",
		},
	}
	require.Equal(t, identity.RoleMentor, id.Role())
	require.Equal(t, "Jane Doe", id.DisplayName())
	require.Equal(t, "jane@example.com", id.Email())

	clone := id.Clone()
	clone.Attributes[identity.AttributeRole] = "student"
	require.Equal(t, identity.RoleMentor, id.Role())

	var nilID *identity.Identity
	require.Equal(t, identity.RoleNone, nilID.Role())
	require.Nil(t, nilID.Clone())
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("sign in: %w", identity.NewError(identity.CodeUserNotConfirmed, "User is not confirmed."))
	require.Equal(t, identity.CodeUserNotConfirmed, identity.CodeOf(err))
	require.Equal(t, "User is not confirmed.", identity.MessageOf(err))
	require.Equal(t, identity.ErrorCode(""), identity.CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("current user: %w", identity.NewError(identity.CodeNotAuthenticated, "no session"))
	require.ErrorIs(t, wrapped, identity.ErrNotAuthenticated)
}
