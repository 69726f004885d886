// Package profile holds the per-user profile record consulted to decide
// whether a user has completed profile setup.
package profile

import (
	"context"
	"time"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a user has no profile record yet
var ErrNotFound = errors.New("profile record not found")

// DegreeLevels are the degree options offered to students
var DegreeLevels = []string{"Bachelors", "Masters", "PhD", "Associates"}

// StudentDetails are the fields a student completes during setup
type StudentDetails struct {
	School      string  `json:"school" form:"school" label:"School" validate:"required"`
	Major       string  `json:"major" form:"major" label:"Major" validate:"required"`
	GPA         float64 `json:"gpa" form:"gpa" label:"GPA" validate:"min=0,max=4"`
	DegreeLevel string  `json:"degreeLevel" form:"degreeLevel" label:"Degree level" validate:"required"`
}

// MentorDetails are the fields a mentor completes during setup
type MentorDetails struct {
	Company  string `json:"company" form:"company" label:"Company" validate:"required"`
	JobTitle string `json:"jobTitle" form:"jobTitle" label:"Job title" validate:"required"`
}

// Record is a user's profile. Exactly one of the role details is set.
type Record struct {
	UserID string        `json:"userId" form:"userId" label:"User" validate:"required"`
	Role   identity.Role `json:"role" form:"role" label:"Role" validate:"oneof=student mentor"`

	*StudentDetails
	*MentorDetails

	LinkedinURL       string    `json:"linkedinUrl,omitempty" form:"linkedinUrl" label:"LinkedIn URL" validate:"omitempty,url"`
	Bio               string    `json:"bio,omitempty" form:"bio" label:"Bio" validate:"max=500"`
	ProfilePictureKey string    `json:"profilePictureKey,omitempty" form:"-"`
	ResumeKey         string    `json:"resumeKey,omitempty" form:"-"`
	UpdatedAt         time.Time `json:"updatedAt" form:"-"`
}

// Complete reports whether the record carries the details its role requires
func (r *Record) Complete() bool {
	if r == nil {
		return false
	}
	switch r.Role {
	case identity.RoleStudent:
		return r.StudentDetails != nil
	case identity.RoleMentor:
		return r.MentorDetails != nil
	}
	return false
}

// Validate checks the record against the profile form rules
func Validate(v *validation.Validator, r *Record) error {
	if r == nil {
		return errors.New("[profile.Validate] record is nil")
	}

	switch r.Role {
	case identity.RoleStudent:
		if r.StudentDetails == nil {
			r.StudentDetails = &StudentDetails{}
		}
		r.MentorDetails = nil
	case identity.RoleMentor:
		if r.MentorDetails == nil {
			r.MentorDetails = &MentorDetails{}
		}
		r.StudentDetails = nil
	}
	return v.Struct(r)
}

// RecordProvider reads profile records. GetRecord returns ErrNotFound
// when the user has not completed profile setup.
type RecordProvider interface {
	GetRecord(ctx context.Context, key string) (*Record, error)
}

// RecordWriter stores profile records
type RecordWriter interface {
	PutRecord(ctx context.Context, record *Record) error
}

// Repo is a profile backend
type Repo interface {
	RecordProvider
	RecordWriter
}

type idTokenKey struct{}

// WithIDToken attaches the caller's ID token for backends that authenticate as the user
func WithIDToken(ctx context.Context, idToken string) context.Context {
	return context.WithValue(ctx, idTokenKey{}, idToken)
}

// IDTokenFrom returns the ID token attached with WithIDToken
func IDTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(idTokenKey{}).(string)
	return token
}
