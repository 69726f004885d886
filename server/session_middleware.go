package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/mentor-portal/guard"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the *session.Entry of the browser session
const ContextKeySession ContextKey = "browser_session"

const sessionCookieName = "mentor_session"

// SessionMiddleware binds the request to a browser session. A new session
// cookie is issued when the browser has none or presents an id the server did
// not hand out.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				presented = cookie.Value
			}
		}

		entry, created, err := s.registry.Attach(r.Context(), presented)
		if err != nil {
			log.Err(err).Msg("Failed to attach browser session")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if entry.ID != presented {
			s.setSessionCookie(w, r, entry.ID)
		}
		if created {
			log.Debug().Str("path", r.URL.Path).Msg("Browser session started")
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, entry)
		next(w, r.WithContext(ctx))
	}
}

func entryFrom(ctx context.Context) *session.Entry {
	entry, _ := ctx.Value(ContextKeySession).(*session.Entry)
	return entry
}

// rotateSession moves the browser session to a new id and reissues the cookie
func (s *Server) rotateSession(w http.ResponseWriter, r *http.Request) (*session.Entry, error) {
	entry, err := s.registry.Rotate(r.Context(), entryFrom(r.Context()).ID)
	if err != nil {
		return nil, err
	}
	s.setSessionCookie(w, r, entry.ID)
	return entry, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.cookieAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// awaitReady waits, at most loadWait, for the browser session's first
// resolution so that a fresh session is not shown the loading page needlessly.
func (s *Server) awaitReady(ctx context.Context, store *session.Store) {
	select {
	case <-store.Ready():
		return
	default:
	}

	timer := time.NewTimer(s.loadWait)
	defer timer.Stop()
	select {
	case <-store.Ready():
	case <-timer.C:
	case <-ctx.Done():
	}
}

// RequireGuard applies the route guard to a protected page
func (s *Server) RequireGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := entryFrom(r.Context())
		if entry == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.awaitReady(r.Context(), entry.Store)

		decision := s.decide(entry.Store.State(), r.URL.Path, r.URL.Query().Get(originParam))
		switch decision.Kind {
		case guard.ShowLoading:
			w.Header().Set("Cache-Control", "no-store")
			s.render(w, http.StatusOK, "loading.html", s.page(r, "Loading"))
		case guard.RedirectLogin, guard.RedirectProfileSetup:
			redirectSuccess(w, r, withOrigin(decision.Target, decision.Origin))
		case guard.RedirectAway:
			redirectSuccess(w, r, decision.Target)
		default:
			next(w, r)
		}
	}
}

func (s *Server) decide(state session.State, requested, origin string) guard.Decision {
	decision := s.paths.Decide(state, requested, origin)
	if s.metrics != nil {
		s.metrics.GuardDecision(string(decision.Kind))
	}
	return decision
}

// withOrigin appends the page to return to as the "from" query parameter
func withOrigin(target, origin string) string {
	if origin == "" {
		return target
	}
	return target + "?" + url.Values{originParam: {origin}}.Encode()
}
