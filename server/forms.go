package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/profile"
)

// SignupForm is the registration form
type SignupForm struct {
	FirstName       string `form:"firstName" label:"First name" validate:"required"`
	LastName        string `form:"lastName" label:"Last name" validate:"required"`
	Email           string `form:"email" label:"Email" validate:"required,email"`
	Password        string `form:"password" label:"Password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" label:"Confirm password" validate:"required,eqfield=Password" msg:"required=Please confirm your password;eqfield=Passwords must match"`
	Role            string `form:"role" label:"Role" validate:"required,oneof=student mentor" msg:"oneof=Please select a role"`
}

// ConfirmForm is the email confirmation form
type ConfirmForm struct {
	Email string `form:"email" label:"Email" validate:"required,email"`
	Code  string `form:"code" label:"Confirmation code" validate:"required"`
}

// LoginForm is the login form
type LoginForm struct {
	Email    string `form:"email" label:"Email" validate:"required,email"`
	Password string `form:"password" label:"Password" validate:"required"`
}

func parseSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		FirstName:       strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:        strings.TrimSpace(r.PostFormValue("lastName")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Role:            r.PostFormValue("role"),
	}
}

// values are echoed back into the form; passwords never are
func (f SignupForm) values() map[string]string {
	return map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"role":      f.Role,
	}
}

func parseConfirmForm(r *http.Request) ConfirmForm {
	return ConfirmForm{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Code:  strings.TrimSpace(r.PostFormValue("code")),
	}
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

var profileFormFields = []string{"school", "major", "gpa", "degreeLevel", "company", "jobTitle", "linkedinUrl", "bio"}

// parseProfileForm builds the record for the signed in user. GPA is parsed
// here so that a missing or malformed value is reported like any other field.
func parseProfileForm(r *http.Request, username string, role identity.Role) (*profile.Record, map[string]string, validation.FieldErrors) {
	values := make(map[string]string, len(profileFormFields))
	for _, field := range profileFormFields {
		values[field] = strings.TrimSpace(r.PostFormValue(field))
	}

	rec := &profile.Record{
		UserID:      username,
		Role:        role,
		LinkedinURL: values["linkedinUrl"],
		Bio:         values["bio"],
	}
	fieldErrs := validation.FieldErrors{}

	switch role {
	case identity.RoleMentor:
		rec.MentorDetails = &profile.MentorDetails{
			Company:  values["company"],
			JobTitle: values["jobTitle"],
		}
	default:
		rec.StudentDetails = &profile.StudentDetails{
			School:      values["school"],
			Major:       values["major"],
			DegreeLevel: values["degreeLevel"],
		}
		switch gpa, err := strconv.ParseFloat(values["gpa"], 64); {
		case values["gpa"] == "":
			fieldErrs["gpa"] = "GPA is required"
		case err != nil:
			fieldErrs["gpa"] = "GPA must be a number"
		default:
			rec.StudentDetails.GPA = gpa
		}
	}
	return rec, values, fieldErrs
}
