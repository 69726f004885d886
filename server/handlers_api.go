package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/session"
)

type sessionUser struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// sessionResponse is the browser session state as seen by a client rendered view
type sessionResponse struct {
	User              *sessionUser  `json:"user"`
	IsAuthenticated   bool          `json:"isAuthenticated"`
	IsLoading         bool          `json:"isLoading"`
	IsProfileComplete bool          `json:"isProfileComplete"`
	UserRole          identity.Role `json:"userRole,omitempty"`
}

func newSessionResponse(st session.State) sessionResponse {
	resp := sessionResponse{
		IsAuthenticated:   st.IsAuthenticated(),
		IsLoading:         st.IsLoading,
		IsProfileComplete: st.IsProfileComplete,
		UserRole:          st.Role,
	}
	if st.Identity != nil {
		resp.User = &sessionUser{
			Username:    st.Identity.Username,
			Email:       st.Identity.Email(),
			DisplayName: st.Identity.DisplayName(),
		}
	}
	return resp
}

// SessionHandler returns the current state without waiting for resolution
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newSessionResponse(entryFrom(r.Context()).Store.State()))
	}
}

// RefreshSessionHandler forces a token refresh and re-resolves the session
func (s *Server) RefreshSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := entryFrom(r.Context()).Store
		store.RefreshSession(r.Context())
		writeJSON(w, http.StatusOK, newSessionResponse(store.State()))
	}
}

type guardRequest struct {
	Path   string `json:"path"`
	Origin string `json:"origin,omitempty"`
}

// GuardHandler answers what a client rendered view should do on navigation
func (s *Server) GuardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req guardRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "body must be a JSON object with a path")
			return
		}
		if !strings.HasPrefix(req.Path, "/") {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "path must be absolute")
			return
		}

		state := entryFrom(r.Context()).Store.State()
		writeJSON(w, http.StatusOK, s.decide(state, req.Path, req.Origin))
	}
}

func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, entryFrom(r.Context()).Notifications.Active())
	}
}

func (s *Server) DismissNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryFrom(r.Context()).Notifications.Dismiss(notify.Handle(r.PathValue("handle")))
		w.WriteHeader(http.StatusNoContent)
	}
}
