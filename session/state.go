package session

import "github.com/jrsteele09/mentor-portal/identity"

// State is the authentication and profile state of one browser session.
// Identity present is the only source of IsAuthenticated, so the two can't
// disagree.
type State struct {
	Identity          *identity.Identity
	Role              identity.Role
	IsProfileComplete bool
	IsLoading         bool
}

// IsAuthenticated reports whether an identity is signed in
func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// initialState is the state of a store that has not resolved yet
func initialState() State {
	return State{IsLoading: true}
}

// signedOut returns the unauthenticated defaults, keeping the loading flag
func signedOut(loading bool) State {
	return State{IsLoading: loading}
}

func (s State) clone() State {
	s.Identity = s.Identity.Clone()
	return s
}
