package server

import (
	"net/http"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/session"
)

// SignupGetHandler renders the signup page
func (s *Server) SignupGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, "signup.html", s.page(r, "Sign up"))
	}
}

// SignupPostHandler registers the account and moves on to confirmation
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := parseSignupForm(r)

		if err := s.validator.Struct(form); err != nil {
			data := s.page(r, "Sign up")
			data.Form = form.values()
			data.Errors, _ = fieldErrors(err)
			s.render(w, http.StatusUnprocessableEntity, "signup.html", data)
			return
		}

		entry := entryFrom(r.Context())
		_, err := entry.Store.Signup(r.Context(), session.SignupInput{
			Email:     form.Email,
			Password:  form.Password,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Role:      identity.ParseRole(form.Role),
		})
		if err != nil {
			data := s.page(r, "Sign up")
			data.Form = form.values()
			data.Errors = validation.FieldErrors{failureField(err): failureMessage(err)}
			s.render(w, failureStatus(err), "signup.html", data)
			return
		}

		redirectWithEmail(w, r, RouteConfirm, form.Email)
	}
}

// ConfirmGetHandler renders the confirmation page, prefilling the email
func (s *Server) ConfirmGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Confirm your email")
		data.Form["email"] = r.URL.Query().Get("email")
		s.render(w, http.StatusOK, "confirm.html", data)
	}
}

// ConfirmPostHandler confirms the account and moves on to login
func (s *Server) ConfirmPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := parseConfirmForm(r)

		if err := s.validator.Struct(form); err != nil {
			data := s.page(r, "Confirm your email")
			data.Form = map[string]string{"email": form.Email, "code": form.Code}
			data.Errors, _ = fieldErrors(err)
			s.render(w, http.StatusUnprocessableEntity, "confirm.html", data)
			return
		}

		entry := entryFrom(r.Context())
		if err := entry.Store.ConfirmSignup(r.Context(), form.Email, form.Code); err != nil {
			data := s.page(r, "Confirm your email")
			data.Form = map[string]string{"email": form.Email}
			data.Errors = validation.FieldErrors{failureField(err): failureMessage(err)}
			s.render(w, failureStatus(err), "confirm.html", data)
			return
		}

		redirectWithEmail(w, r, RouteLogin, form.Email)
	}
}
