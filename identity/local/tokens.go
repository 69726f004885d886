package local

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/users"
)

const (
	claimUsername      = "username"
	refreshTokenLength = 32
)

// createIDToken mints an HS256 ID token carrying the user's attributes
func (s *Service) createIDToken(user *users.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.IDTokenExpiry)
	claims := jwtlib.MapClaims{
		"iss":            s.cfg.Issuer,
		"sub":            user.ID,
		"aud":            s.cfg.Audience,
		claimUsername:    user.Email,
		"iat":            now.Unix(),
		"exp":            expiresAt.Unix(),
		"jti":            uuid.New().String(),
		"token_use":      "id",
		"email_verified": user.Confirmed,
	}
	for k, v := range user.Attributes() {
		claims[k] = v
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign ID token: %w", err)
	}
	return signed, expiresAt, nil
}

// parseIDToken verifies an ID token and returns the identity it carries
func (s *Service) parseIDToken(raw string) (*identity.Identity, error) {
	token, err := jwtlib.Parse(raw, func(*jwtlib.Token) (interface{}, error) {
		return s.cfg.SigningKey, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(s.cfg.Issuer),
		jwtlib.WithAudience(s.cfg.Audience),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.nowTime),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid ID token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid ID token claims")
	}

	username, _ := claims[claimUsername].(string)
	if username == "" {
		return nil, fmt.Errorf("ID token has no username")
	}

	attrs := identity.Attributes{}
	for _, name := range []string{identity.AttributeEmail, identity.AttributeGivenName, identity.AttributeFamilyName, identity.AttributeRole} {
		if v, ok := claims[name].(string); ok {
			attrs[name] = v
		}
	}
	return &identity.Identity{Username: username, Attributes: attrs}, nil
}

// generateRefreshToken creates a random base64url string
func generateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
