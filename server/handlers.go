package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/mentor-portal/guard"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithEmail redirects to path carrying the email to prefill
func redirectWithEmail(w http.ResponseWriter, r *http.Request, path, email string) {
	if email != "" {
		path += "?" + url.Values{"email": {email}}.Encode()
	}
	redirectSuccess(w, r, path)
}

// landing is where to go after login or profile setup
func (s *Server) landing(origin string) string {
	if origin = guard.SanitizeOrigin(origin); origin != "" && origin != s.paths.ProfileSetup {
		return origin
	}
	return s.paths.DefaultLanding
}

func fieldErrors(err error) (validation.FieldErrors, bool) {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// failureMessage is the text to show for a failed store operation
func failureMessage(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "Something went wrong. Please try again."
}

// failureStatus maps a failure kind to the status of the re-rendered form
func failureStatus(err error) int {
	switch session.KindOf(err) {
	case session.KindDuplicateAccount:
		return http.StatusConflict
	case session.KindInvalidCode, session.KindExpiredCode:
		return http.StatusBadRequest
	case session.KindBadCredentials, session.KindUnknownAccount:
		return http.StatusUnauthorized
	case session.KindUnconfirmedAccount:
		return http.StatusForbidden
	case session.KindInvalidPassword, session.KindInvalidParameter:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fieldGeneral collects form errors that belong to no single field
const fieldGeneral = "general"

// failureField names the form field a failed operation is reported against
func failureField(err error) string {
	switch session.KindOf(err) {
	case session.KindDuplicateAccount:
		return "email"
	case session.KindInvalidPassword:
		return "password"
	case session.KindInvalidCode, session.KindExpiredCode:
		return "code"
	}
	return fieldGeneral
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// NotFoundHandler handles 404 errors
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page not found", http.StatusNotFound)
	}
}
