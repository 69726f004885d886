package server

import (
	"net/http"

	"github.com/jrsteele09/mentor-portal/guard"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/rs/zerolog/log"
)

const msgIncorrectCredentials = "Incorrect email or password"

// LoginPageUIHandler displays the login page, or sends an already signed in
// user on to where they were going
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := entryFrom(r.Context())
		s.awaitReady(r.Context(), entry.Store)

		from := r.URL.Query().Get(originParam)
		if entry.Store.State().IsAuthenticated() {
			redirectSuccess(w, r, s.landing(from))
			return
		}

		data := s.page(r, "Log in")
		data.From = guard.SanitizeOrigin(from)
		data.Form["email"] = r.URL.Query().Get("email")
		s.render(w, http.StatusOK, "login.html", data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := parseLoginForm(r)
		from := guard.SanitizeOrigin(r.PostFormValue(originParam))

		renderError := func(status int, errs validation.FieldErrors) {
			data := s.page(r, "Log in")
			data.From = from
			data.Form["email"] = form.Email
			data.Errors = errs
			s.render(w, status, "login.html", data)
		}

		if err := s.validator.Struct(form); err != nil {
			errs, _ := fieldErrors(err)
			renderError(http.StatusUnprocessableEntity, errs)
			return
		}

		entry, err := s.rotateSession(w, r)
		if err != nil {
			log.Err(err).Msg("Failed to rotate browser session before login")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if _, err := entry.Store.Login(r.Context(), form.Email, form.Password); err != nil {
			switch session.KindOf(err) {
			case session.KindUnconfirmedAccount:
				redirectWithEmail(w, r, RouteConfirm, form.Email)
			case session.KindBadCredentials, session.KindUnknownAccount:
				renderError(http.StatusUnauthorized, validation.FieldErrors{"password": msgIncorrectCredentials})
			default:
				renderError(failureStatus(err), validation.FieldErrors{"password": failureMessage(err)})
			}
			return
		}

		redirectSuccess(w, r, s.landing(from))
	}
}

// LogoutHandler signs the browser session out and moves it to a new id. The
// store resets its state even when the provider fails, so this always lands
// on the home page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryFrom(r.Context()).Store.Logout(r.Context())
		if _, err := s.rotateSession(w, r); err != nil {
			log.Warn().Err(err).Msg("Failed to rotate browser session after logout")
		}
		redirectSuccess(w, r, RouteHome)
	}
}
