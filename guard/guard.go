// Package guard decides what happens when a browser navigates to a protected
// page, given the session state.
package guard

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/mentor-portal/session"
)

// Kind is the outcome of a navigation decision
type Kind string

const (
	ShowLoading          Kind = "SHOW_LOADING"
	RedirectLogin        Kind = "REDIRECT_LOGIN"
	RedirectProfileSetup Kind = "REDIRECT_PROFILE_SETUP"
	RedirectAway         Kind = "REDIRECT_AWAY"
	Allow                Kind = "ALLOW"
)

// Decision is the guard's answer. Target is set for redirects; Origin is the
// path to remember so the user can be returned to it later.
type Decision struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// Paths are the well known pages the guard redirects to
type Paths struct {
	Login          string
	ProfileSetup   string
	DefaultLanding string
}

// DefaultPaths are the application's page paths
var DefaultPaths = Paths{
	Login:          "/login",
	ProfileSetup:   "/profile-setup",
	DefaultLanding: "/dashboard",
}

// Decide applies the rules in order, first match wins:
//
//  1. still loading: show the loading view
//  2. signed out: send to login, remembering the requested path
//  3. profile incomplete, not on profile setup: send to profile setup, remembering the requested path
//  4. profile complete, on profile setup: send back to the origin or the default landing page
//  5. otherwise allow
func (p Paths) Decide(state session.State, requested, origin string) Decision {
	requested = cleanPath(requested)
	origin = SanitizeOrigin(origin)

	switch {
	case state.IsLoading:
		return Decision{Kind: ShowLoading}
	case !state.IsAuthenticated():
		return Decision{Kind: RedirectLogin, Target: p.Login, Origin: requested}
	case !state.IsProfileComplete && requested != p.ProfileSetup:
		return Decision{Kind: RedirectProfileSetup, Target: p.ProfileSetup, Origin: requested}
	case state.IsProfileComplete && requested == p.ProfileSetup:
		target := origin
		if target == "" || target == p.ProfileSetup {
			target = p.DefaultLanding
		}
		return Decision{Kind: RedirectAway, Target: target}
	}
	return Decision{Kind: Allow}
}

// Decide uses DefaultPaths
func Decide(state session.State, requested, origin string) Decision {
	return DefaultPaths.Decide(state, requested, origin)
}

// SanitizeOrigin returns origin when it is a same-site absolute path and ""
// otherwise, so redirects can never leave the site.
func SanitizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || !strings.HasPrefix(origin, "/") || strings.HasPrefix(origin, "//") || strings.HasPrefix(origin, "/\\") {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return origin
}

// cleanPath strips a trailing slash so "/profile-setup/" matches "/profile-setup"
func cleanPath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
