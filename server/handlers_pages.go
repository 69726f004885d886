package server

import (
	"net/http"

	"github.com/jrsteele09/mentor-portal/guard"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/rs/zerolog/log"
)

const (
	msgProfileSaved      = "Profile setup complete!"
	msgProfileSaveFailed = "Failed to save profile. Please try again."

	keyProfileSetup      = "profile-setup"
	keyProfileSetupError = "profile-setup-error"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, "index.html", s.page(r, ""))
	}
}

func (s *Server) LearnMoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, "learn_more.html", s.page(r, "Learn more"))
	}
}

// DashboardHandler renders the dashboard and its sections
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Dashboard")
		data.Section = r.PathValue("rest")
		s.render(w, http.StatusOK, "dashboard.html", data)
	}
}

func (s *Server) OpportunityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Opportunity")
		data.Opportunity = r.PathValue("id")
		s.render(w, http.StatusOK, "opportunity.html", data)
	}
}

// ProfileSetupGetHandler renders the profile form for the signed in role
func (s *Server) ProfileSetupGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Profile setup")
		data.From = guard.SanitizeOrigin(r.URL.Query().Get(originParam))
		data.DegreeLevels = profile.DegreeLevels
		s.render(w, http.StatusOK, "profile_setup.html", data)
	}
}

// ProfileSetupPostHandler stores the profile record, marks the browser
// session's profile complete and moves on
func (s *Server) ProfileSetupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		entry := entryFrom(r.Context())
		state := entry.Store.State()
		from := guard.SanitizeOrigin(r.PostFormValue(originParam))
		if state.Identity == nil {
			redirectSuccess(w, r, withOrigin(RouteLogin, RouteProfileSetup))
			return
		}

		rec, values, errs := parseProfileForm(r, state.Identity.Username, state.Role)
		if err := profile.Validate(s.validator, rec); err != nil {
			verrs, ok := fieldErrors(err)
			if !ok {
				log.Err(err).Msg("Failed to validate profile")
			}
			for field, msg := range verrs {
				if _, exists := errs[field]; !exists {
					errs[field] = msg
				}
			}
		}

		if len(errs) > 0 {
			s.renderProfileSetup(w, r, http.StatusUnprocessableEntity, values, from, errs)
			return
		}

		if err := s.profiles.PutRecord(entry.Store.WithIDToken(r.Context()), rec); err != nil {
			log.Err(err).Str("username", state.Identity.Username).Msg("Error saving profile")
			entry.Notifications.Notify(msgProfileSaveFailed, notify.KindError, keyProfileSetupError)
			s.renderProfileSetup(w, r, http.StatusInternalServerError, values, from, nil)
			return
		}

		entry.Store.SetProfileComplete(true)
		entry.Notifications.Notify(msgProfileSaved, notify.KindSuccess, keyProfileSetup)
		redirectSuccess(w, r, s.landing(from))
	}
}

func (s *Server) renderProfileSetup(w http.ResponseWriter, r *http.Request, status int, values map[string]string, from string, errs map[string]string) {
	data := s.page(r, "Profile setup")
	data.Form = values
	data.From = from
	data.Errors = errs
	data.DegreeLevels = profile.DegreeLevels
	s.render(w, status, "profile_setup.html", data)
}
