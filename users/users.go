package users

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"unicode"

	"github.com/jrsteele09/mentor-portal/identity"
	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const confirmationCodeDigits = 6

// MaxConfirmationAttempts is how many wrong codes discard a pending confirmation code
const MaxConfirmationAttempts = 5

type User struct {
	ID           string        `json:"id,omitempty"`          // Unique identifier for the user
	Email        string        `json:"email,omitempty"`       // User's email address, also the sign-in username
	PasswordHash string        `json:"-"`                     // Hashed version of the user's password - never serialize
	FirstName    string        `json:"first_name,omitempty"`  // First name of the user
	LastName     string        `json:"last_name,omitempty"`   // Last name of the user
	Role         identity.Role `json:"role,omitempty"`        // student or mentor
	DateJoined   time.Time     `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin    time.Time     `json:"last_login,omitempty"`  // Last time the user logged in

	Confirmed             bool      `json:"confirmed,omitempty"` // Confirmed, has the user entered the emailed code
	ConfirmationCode      string    `json:"-"`
	ConfirmationExpiresAt time.Time `json:"-"`
	ConfirmationAttempts  int       `json:"-"` // wrong codes entered against the pending code
}

// NormaliseEmail lower-cases and trims an email so it can be used as a key.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateConfirmationCode returns a random numeric code
func GenerateConfirmationCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < confirmationCodeDigits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// IssueConfirmationCode sets a fresh code on the user, valid for ttl.
func (u *User) IssueConfirmationCode(now time.Time, ttl time.Duration) error {
	code, err := GenerateConfirmationCode()
	if err != nil {
		return err
	}
	u.ConfirmationCode = code
	u.ConfirmationExpiresAt = now.Add(ttl)
	u.ConfirmationAttempts = 0
	return nil
}

// CheckConfirmationCode verifies code against the pending confirmation code.
// A wrong code is counted on u, and the pending code is discarded once
// MaxConfirmationAttempts is reached. Callers persist u after a mismatch.
func (u *User) CheckConfirmationCode(code string, now time.Time) error {
	if u.ConfirmationCode == "" {
		return apperrors.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(u.ConfirmationCode)) != 1 {
		u.ConfirmationAttempts++
		if u.ConfirmationAttempts >= MaxConfirmationAttempts {
			u.ConfirmationCode = ""
		}
		return apperrors.ErrCodeMismatch
	}
	if !now.Before(u.ConfirmationExpiresAt) {
		return apperrors.ErrCodeExpired
	}
	return nil
}

// Authenticate checks the password, then the confirmation status
func (u *User) Authenticate(password string) error {
	if !CheckPasswordHash(password, u.PasswordHash) {
		return apperrors.ErrInvalidCredential
	}
	if !u.Confirmed {
		return apperrors.ErrUserNotConfirmed
	}
	return nil
}

// Attributes returns the provider attributes for the user.
func (u *User) Attributes() identity.Attributes {
	return identity.Attributes{
		identity.AttributeEmail:      u.Email,
		identity.AttributeGivenName:  u.FirstName,
		identity.AttributeFamilyName: u.LastName,
		identity.AttributeRole:       string(u.Role),
	}
}

// Identity returns the provider identity for the user.
func (u *User) Identity() *identity.Identity {
	return &identity.Identity{Username: u.Email, Attributes: u.Attributes()}
}
