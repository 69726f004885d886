package local

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/mentor-portal/identity"
	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/jrsteele09/mentor-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Config holds the token and confirmation settings for the local provider
type Config struct {
	Issuer              string
	Audience            string
	SigningKey          []byte
	IDTokenExpiry       time.Duration
	RefreshTokenExpiry  time.Duration
	ConfirmationCodeTTL time.Duration
}

// CodeSender delivers a confirmation code to a newly registered user.
type CodeSender func(ctx context.Context, user *users.User, code string) error

// LogCodeSender writes the confirmation code to the log. Used in development
// where no mail transport is configured.
func LogCodeSender(_ context.Context, user *users.User, code string) error {
	log.Info().Str("email", user.Email).Str("code", code).Msg("Confirmation code issued")
	return nil
}

// Service is a self-contained identity provider backed by a user repository.
// It mirrors the managed provider's behaviour: unconfirmed sign-ups,
// emailed confirmation codes and classified error codes.
type Service struct {
	users    users.UserRepo
	sessions loginsession.Repo
	cfg      Config
	sendCode CodeSender
	nowTime  func() time.Time
}

var (
	_ identity.Factory       = (*Service)(nil)
	_ identity.SessionKeeper = (*Service)(nil)
)

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithCodeSender sets how confirmation codes are delivered
func WithCodeSender(sender CodeSender) Option {
	return func(s *Service) {
		s.sendCode = sender
	}
}

// New initializes the local provider with required dependencies.
func New(userRepo users.UserRepo, sessionRepo loginsession.Repo, cfg Config, options ...Option) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[local.New] users repo is required")
	}
	if sessionRepo == nil {
		return nil, errors.New("[local.New] login session repo is required")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("[local.New] signing key is required")
	}
	if cfg.IDTokenExpiry <= 0 {
		cfg.IDTokenExpiry = time.Hour
	}
	if cfg.RefreshTokenExpiry <= 0 {
		cfg.RefreshTokenExpiry = 30 * 24 * time.Hour
	}
	if cfg.ConfirmationCodeTTL <= 0 {
		cfg.ConfirmationCodeTTL = 24 * time.Hour
	}

	s := &Service{
		users:    userRepo,
		sessions: sessionRepo,
		cfg:      cfg,
		sendCode: LogCodeSender,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// ForSession returns a provider bound to a browser session
func (s *Service) ForSession(sessionID string) identity.Provider {
	return &provider{svc: s, sessionID: sessionID}
}

// HasSession reports whether a sign-in is stored for the browser session
func (s *Service) HasSession(ctx context.Context, sessionID string) (bool, error) {
	return loginsession.Exists(ctx, s.sessions, sessionID)
}

// MoveSession re-keys a stored sign-in to a new browser session id
func (s *Service) MoveSession(ctx context.Context, fromID, toID string) error {
	return loginsession.Move(ctx, s.sessions, fromID, toID)
}

type provider struct {
	svc       *Service
	sessionID string
}

func (p *provider) SignUp(ctx context.Context, username, password string, attributes identity.Attributes) (*identity.Identity, error) {
	email := users.NormaliseEmail(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, identity.NewError(identity.CodeInvalidParameter, "Username should be an email.")
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		return nil, identity.WrapError(identity.CodeInvalidPassword, "Password did not conform with policy: "+err.Error(), err)
	}
	role := identity.ParseRole(attributes[identity.AttributeRole])
	if !role.Valid() {
		return nil, identity.NewError(identity.CodeInvalidParameter, "A role of student or mentor is required.")
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[local.SignUp] HashPassword")
	}

	now := p.svc.nowTime()
	user := &users.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(attributes[identity.AttributeGivenName]),
		LastName:     strings.TrimSpace(attributes[identity.AttributeFamilyName]),
		Role:         role,
		DateJoined:   now,
	}
	if err := user.IssueConfirmationCode(now, p.svc.cfg.ConfirmationCodeTTL); err != nil {
		return nil, errors.Wrap(err, "[local.SignUp] IssueConfirmationCode")
	}
	if err := p.svc.users.Upsert(user); apperrors.Is(err, apperrors.ErrUserExists) {
		return nil, identity.WrapError(identity.CodeUsernameExists, "An account with the given email already exists.", err)
	} else if err != nil {
		return nil, errors.Wrap(err, "[local.SignUp] users.Upsert")
	}
	if err := p.svc.sendCode(ctx, user, user.ConfirmationCode); err != nil {
		return nil, errors.Wrap(err, "[local.SignUp] sendCode")
	}

	return user.Identity(), nil
}

func (p *provider) ConfirmRegistration(_ context.Context, username, code string) error {
	user, err := p.svc.users.GetByEmail(username)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return identity.NewError(identity.CodeUserNotFound, "Username/client id combination not found.")
	}
	if err != nil {
		return identity.WrapError(identity.CodeServiceUnavailable, "Failed to look up user", err)
	}

	if user.Confirmed {
		return identity.NewError(identity.CodeNotAuthorized, "User cannot be confirmed. Current status is CONFIRMED")
	}
	switch err := user.CheckConfirmationCode(code, p.svc.nowTime()); {
	case apperrors.Is(err, apperrors.ErrCodeMismatch):
		if err := p.svc.users.Upsert(user); err != nil {
			return identity.WrapError(identity.CodeServiceUnavailable, "Failed to record confirmation attempt", err)
		}
		return identity.WrapError(identity.CodeCodeMismatch, "Invalid verification code provided, please try again.", err)
	case apperrors.Is(err, apperrors.ErrCodeExpired):
		return identity.WrapError(identity.CodeExpiredCode, "Invalid code provided, please request a code again.", err)
	case err != nil:
		return errors.Wrap(err, "[local.ConfirmRegistration] CheckConfirmationCode")
	}

	if err := p.svc.users.SetConfirmed(user.Email, true); err != nil {
		return errors.Wrap(err, "[local.ConfirmRegistration] SetConfirmed")
	}
	return nil
}

func (p *provider) SignIn(ctx context.Context, username, password string) (*identity.Identity, error) {
	user, err := p.svc.users.GetByEmail(username)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, identity.NewError(identity.CodeUserNotFound, "User does not exist.")
	}
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Failed to look up user", err)
	}

	// Confirmation status is only reported once the password matches
	switch err := user.Authenticate(password); {
	case apperrors.Is(err, apperrors.ErrInvalidCredential):
		return nil, identity.WrapError(identity.CodeNotAuthorized, "Incorrect username or password.", err)
	case apperrors.Is(err, apperrors.ErrUserNotConfirmed):
		return nil, identity.WrapError(identity.CodeUserNotConfirmed, "User is not confirmed.", err)
	case err != nil:
		return nil, errors.Wrap(err, "[local.SignIn] Authenticate")
	}

	now := p.svc.nowTime()
	idToken, expiresAt, err := p.svc.createIDToken(user, now)
	if err != nil {
		return nil, errors.Wrap(err, "[local.SignIn] createIDToken")
	}
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "[local.SignIn] generateRefreshToken")
	}

	if err := p.svc.sessions.Upsert(ctx, p.sessionID, loginsession.Session{
		Username:     user.Email,
		IDToken:      idToken,
		AccessToken:  idToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
	}); err != nil {
		return nil, errors.Wrap(err, "[local.SignIn] sessions.Upsert")
	}

	user.LastLogin = now
	if err := p.svc.users.Upsert(user); err != nil {
		log.Err(err).Str("email", user.Email).Msg("Failed to record last login")
	}

	return user.Identity(), nil
}

func (p *provider) SignOut(ctx context.Context) error {
	if err := p.svc.sessions.Delete(ctx, p.sessionID); err != nil {
		return errors.Wrap(err, "[local.SignOut] sessions.Delete")
	}
	return nil
}

func (p *provider) CurrentSession(ctx context.Context, bypassCache bool) (*identity.Session, error) {
	record, err := p.svc.sessions.Get(ctx, p.sessionID)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, identity.ErrNotAuthenticated
	}
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Failed to load session", err)
	}

	if !bypassCache {
		if _, err := p.svc.parseIDToken(record.IDToken); err == nil {
			return toSession(record), nil
		}
	}

	return p.refresh(ctx, record)
}

func (p *provider) CurrentIdentity(ctx context.Context) (*identity.Identity, error) {
	sess, err := p.CurrentSession(ctx, false)
	if err != nil {
		return nil, err
	}
	id, err := p.svc.parseIDToken(sess.IDToken)
	if err != nil {
		return nil, identity.WrapError(identity.CodeNotAuthenticated, "Session token rejected", err)
	}
	return id, nil
}

// refresh re-issues the ID token from the user record, picking up any
// attribute changes since sign-in.
func (p *provider) refresh(ctx context.Context, record loginsession.Session) (*identity.Session, error) {
	now := p.svc.nowTime()
	if record.RefreshToken == "" || !now.Before(record.CreatedAt.Add(p.svc.cfg.RefreshTokenExpiry)) {
		_ = p.svc.sessions.Delete(ctx, p.sessionID)
		return nil, identity.WrapError(identity.CodeNotAuthenticated, "Refresh token has expired", apperrors.ErrSessionExpired)
	}

	user, err := p.svc.users.GetByEmail(record.Username)
	if err != nil {
		_ = p.svc.sessions.Delete(ctx, p.sessionID)
		return nil, identity.WrapError(identity.CodeNotAuthenticated, "User no longer exists", err)
	}

	idToken, expiresAt, err := p.svc.createIDToken(user, now)
	if err != nil {
		return nil, errors.Wrap(err, "[local.refresh] createIDToken")
	}
	record.IDToken = idToken
	record.AccessToken = idToken
	record.ExpiresAt = expiresAt
	if err := p.svc.sessions.Upsert(ctx, p.sessionID, record); err != nil {
		return nil, errors.Wrap(err, "[local.refresh] sessions.Upsert")
	}
	return toSession(record), nil
}

func toSession(record loginsession.Session) *identity.Session {
	return &identity.Session{
		IDToken:      record.IDToken,
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.ExpiresAt,
	}
}
