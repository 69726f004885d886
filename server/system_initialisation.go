package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/config"
	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/jrsteele09/mentor-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	DemoStudentUsername = "student"
	DemoMentorUsername  = "mentor"
)

// DemoAccount is a seeded development login
type DemoAccount struct {
	Email    string
	Password string
	Role     identity.Role
}

// InitialiseSystem seeds a confirmed demo student and demo mentor in DEV when
// the local identity provider is in use. The mentor also gets a profile so
// both the profile setup and dashboard paths can be tried. Accounts that
// already exist are left alone.
func InitialiseSystem(ctx context.Context, cfg config.Config, backends *Backends) ([]DemoAccount, error) {
	if !cfg.IsDev() || backends.Users == nil {
		return nil, nil
	}

	baseURL := cfg.GetBaseURL()
	var created []DemoAccount

	student, err := createDemoUser(backends.Users, generateEmailFromBaseURL(DemoStudentUsername, baseURL), "Sam", "Student", identity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("[server InitialiseSystem] failed to create demo student: %w", err)
	}
	if student != nil {
		created = append(created, *student)
	}

	mentor, err := createDemoUser(backends.Users, generateEmailFromBaseURL(DemoMentorUsername, baseURL), "Morgan", "Mentor", identity.RoleMentor)
	if err != nil {
		return nil, fmt.Errorf("[server InitialiseSystem] failed to create demo mentor: %w", err)
	}
	if mentor != nil {
		created = append(created, *mentor)
		if err := backends.Profiles.PutRecord(ctx, &profile.Record{
			UserID:        mentor.Email,
			Role:          identity.RoleMentor,
			MentorDetails: &profile.MentorDetails{Company: "Acme Corp", JobTitle: "Staff Engineer"},
			Bio:           "Happy to talk about breaking into software engineering.",
		}); err != nil {
			return nil, fmt.Errorf("[server InitialiseSystem] failed to create demo mentor profile: %w", err)
		}
	}

	for _, account := range created {
		log.Info().
			Str("email", account.Email).
			Str("password", account.Password).
			Str("role", account.Role.String()).
			Msg("👤 Demo account created")
	}
	return created, nil
}

// createDemoUser returns nil when the account already exists
func createDemoUser(repo users.UserRepo, email, firstName, lastName string, role identity.Role) (*DemoAccount, error) {
	if existing, err := repo.GetByEmail(email); err == nil && existing != nil {
		return nil, nil
	} else if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, err
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		DateJoined:   time.Now(),
		Confirmed:    true,
	}
	if err := repo.Upsert(user); err != nil {
		return nil, err
	}
	return &DemoAccount{Email: email, Password: password, Role: role}, nil
}

// generatePassword returns a random password that passes the strength rules
func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return "Demo" + base64.RawURLEncoding.EncodeToString(b) + "7", nil
}

// generateEmailFromBaseURL creates an email address from a username and base URL
// Example: ("mentor", "https://mentors.example.com/path") -> "mentor@mentors.example.com"
func generateEmailFromBaseURL(user, baseURL string) string {
	domain := strings.ReplaceAll(strings.ReplaceAll(baseURL, "https://", ""), "http://", "")
	domain = strings.SplitN(domain, "/", 2)[0]
	domain = strings.SplitN(domain, ":", 2)[0]
	if !strings.Contains(domain, ".") {
		domain += ".local"
	}
	return fmt.Sprintf("%s@%s", user, domain)
}
