package local_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/identity/local"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/jrsteele09/mentor-portal/users"
	fakeuserrepo "github.com/jrsteele09/mentor-portal/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testSessionID = "browser-session-1"
	testEmail     = "jane@example.com"
	testPassword  = "Password123"
)

type testFixture struct {
	userRepo    users.UserRepo
	sessionRepo *loginsession.InMemoryLoginSessionRepo
	service     *local.Service
	now         time.Time
	codes       map[string]string
	mu          sync.Mutex
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		sessionRepo: loginsession.NewInMemoryLoginSessionRepo(),
		now:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		codes:       make(map[string]string),
	}

	svc, err := local.New(f.userRepo, f.sessionRepo, local.Config{
		Issuer:              "mentor-portal-test",
		Audience:            "mentor-portal",
		SigningKey:          []byte("test-signing-key"),
		IDTokenExpiry:       time.Hour,
		RefreshTokenExpiry:  24 * time.Hour,
		ConfirmationCodeTTL: 30 * time.Minute,
	},
		local.WithNowTime(func() time.Time {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.now
		}),
		local.WithCodeSender(func(_ context.Context, user *users.User, code string) error {
			f.codes[user.Email] = code
			return nil
		}),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *testFixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func signupAttributes(role string) identity.Attributes {
	return identity.Attributes{
		identity.AttributeEmail:      testEmail,
		identity.AttributeGivenName:  "Jane",
		identity.AttributeFamilyName: "Doe",
		identity.AttributeRole:       role,
	}
}

func (f *testFixture) registerConfirmed(t *testing.T) identity.Provider {
	t.Helper()
	p := f.service.ForSession(testSessionID)
	ctx := context.Background()
	_, err := p.SignUp(ctx, testEmail, testPassword, signupAttributes("mentor"))
	require.NoError(t, err)
	require.NoError(t, p.ConfirmRegistration(ctx, testEmail, f.codes[testEmail]))
	return p
}

func TestNew_Validation(t *testing.T) {
	_, err := local.New(nil, loginsession.NewInMemoryLoginSessionRepo(), local.Config{SigningKey: []byte("k")})
	require.Error(t, err)
	_, err = local.New(fakeuserrepo.NewFakeUserRepo(), nil, local.Config{SigningKey: []byte("k")})
	require.Error(t, err)
	_, err = local.New(fakeuserrepo.NewFakeUserRepo(), loginsession.NewInMemoryLoginSessionRepo(), local.Config{})
	require.Error(t, err)
}

func TestSignUp(t *testing.T) {
	f := setupTestFixture(t)
	p := f.service.ForSession(testSessionID)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "Jane@Example.com", testPassword, signupAttributes("student"))
	require.NoError(t, err)
	require.Equal(t, testEmail, id.Username)
	require.Equal(t, identity.RoleStudent, id.Role())
	require.Len(t, f.codes[testEmail], 6)

	user, err := f.userRepo.GetByEmail(testEmail)
	require.NoError(t, err)
	require.False(t, user.Confirmed)
	require.NotEqual(t, testPassword, user.PasswordHash)

	t.Run("duplicate account", func(t *testing.T) {
		_, err := p.SignUp(ctx, testEmail, testPassword, signupAttributes("student"))
		require.Equal(t, identity.CodeUsernameExists, identity.CodeOf(err))
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := p.SignUp(ctx, "other@example.com", "short", signupAttributes("student"))
		require.Equal(t, identity.CodeInvalidPassword, identity.CodeOf(err))
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := p.SignUp(ctx, "other@example.com", testPassword, signupAttributes(""))
		require.Equal(t, identity.CodeInvalidParameter, identity.CodeOf(err))
	})

	t.Run("sign up does not authenticate", func(t *testing.T) {
		_, err := p.CurrentIdentity(ctx)
		require.Equal(t, identity.CodeNotAuthenticated, identity.CodeOf(err))
	})
}

func TestConfirmRegistration(t *testing.T) {
	f := setupTestFixture(t)
	p := f.service.ForSession(testSessionID)
	ctx := context.Background()

	_, err := p.SignUp(ctx, testEmail, testPassword, signupAttributes("student"))
	require.NoError(t, err)

	err = p.ConfirmRegistration(ctx, "nobody@example.com", "123456")
	require.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))

	wrong := "000000"
	if f.codes[testEmail] == wrong {
		wrong = "111111"
	}
	err = p.ConfirmRegistration(ctx, testEmail, wrong)
	require.Equal(t, identity.CodeCodeMismatch, identity.CodeOf(err))

	require.NoError(t, p.ConfirmRegistration(ctx, testEmail, f.codes[testEmail]))

	err = p.ConfirmRegistration(ctx, testEmail, f.codes[testEmail])
	require.Equal(t, identity.CodeNotAuthorized, identity.CodeOf(err))
}

func TestConfirmRegistration_Expired(t *testing.T) {
	f := setupTestFixture(t)
	p := f.service.ForSession(testSessionID)
	ctx := context.Background()

	_, err := p.SignUp(ctx, testEmail, testPassword, signupAttributes("student"))
	require.NoError(t, err)

	f.advance(31 * time.Minute)
	err = p.ConfirmRegistration(ctx, testEmail, f.codes[testEmail])
	require.Equal(t, identity.CodeExpiredCode, identity.CodeOf(err))
}

func TestConfirmRegistration_AttemptLimit(t *testing.T) {
	f := setupTestFixture(t)
	p := f.service.ForSession(testSessionID)
	ctx := context.Background()

	_, err := p.SignUp(ctx, testEmail, testPassword, signupAttributes("student"))
	require.NoError(t, err)
	code := f.codes[testEmail]
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < users.MaxConfirmationAttempts; i++ {
		err = p.ConfirmRegistration(ctx, testEmail, wrong)
		require.Equal(t, identity.CodeCodeMismatch, identity.CodeOf(err))
	}

	// The correct code no longer works once the attempts are used up
	err = p.ConfirmRegistration(ctx, testEmail, code)
	require.Equal(t, identity.CodeExpiredCode, identity.CodeOf(err))

	user, err := f.userRepo.GetByEmail(testEmail)
	require.NoError(t, err)
	require.False(t, user.Confirmed)
	require.Equal(t, users.MaxConfirmationAttempts, user.ConfirmationAttempts)
}

func TestMoveSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	p := f.registerConfirmed(t)

	_, err := p.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	known, err := f.service.HasSession(ctx, testSessionID)
	require.NoError(t, err)
	require.True(t, known)

	require.NoError(t, f.service.MoveSession(ctx, testSessionID, "browser-session-2"))

	_, err = p.CurrentIdentity(ctx)
	require.ErrorIs(t, err, identity.ErrNotAuthenticated)

	id, err := f.service.ForSession("browser-session-2").CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, id.Username)

	known, err = f.service.HasSession(ctx, testSessionID)
	require.NoError(t, err)
	require.False(t, known)
}

func TestSignIn(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	p := f.service.ForSession(testSessionID)

	_, err := p.SignIn(ctx, testEmail, testPassword)
	require.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))

	_, err = p.SignUp(ctx, testEmail, testPassword, signupAttributes("mentor"))
	require.NoError(t, err)

	_, err = p.SignIn(ctx, testEmail, testPassword)
	require.Equal(t, identity.CodeUserNotConfirmed, identity.CodeOf(err))

	_, err = p.SignIn(ctx, testEmail, "WrongPassword1")
	require.Equal(t, identity.CodeNotAuthorized, identity.CodeOf(err))

	require.NoError(t, p.ConfirmRegistration(ctx, testEmail, f.codes[testEmail]))

	id, err := p.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, identity.RoleMentor, id.Role())

	current, err := p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, current.Username)
	require.Equal(t, "Jane", current.Attributes[identity.AttributeGivenName])
	require.Equal(t, identity.RoleMentor, current.Role())

	// Another browser session is not signed in
	_, err = f.service.ForSession("other-session").CurrentIdentity(ctx)
	require.ErrorIs(t, err, identity.ErrNotAuthenticated)
}

func TestCurrentSession_Refresh(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	p := f.registerConfirmed(t)

	_, err := p.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	cached, err := p.CurrentSession(ctx, false)
	require.NoError(t, err)

	// Attribute change is only visible after a cache bypass
	user, err := f.userRepo.GetByEmail(testEmail)
	require.NoError(t, err)
	user.Role = identity.RoleStudent
	require.NoError(t, f.userRepo.Upsert(user))

	id, err := p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, identity.RoleMentor, id.Role())

	f.advance(time.Second)
	refreshed, err := p.CurrentSession(ctx, true)
	require.NoError(t, err)
	require.NotEqual(t, cached.IDToken, refreshed.IDToken)
	require.Equal(t, cached.RefreshToken, refreshed.RefreshToken)

	id, err = p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, identity.RoleStudent, id.Role())
}

func TestCurrentSession_Expiry(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	p := f.registerConfirmed(t)

	_, err := p.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	// ID token expired, refresh token still valid: silently refreshed
	f.advance(2 * time.Hour)
	id, err := p.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, id.Username)

	// Refresh token expired
	f.advance(24 * time.Hour)
	_, err = p.CurrentIdentity(ctx)
	require.Equal(t, identity.CodeNotAuthenticated, identity.CodeOf(err))

	_, err = f.sessionRepo.Get(ctx, testSessionID)
	require.Error(t, err)
}

func TestSignOut(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	p := f.registerConfirmed(t)

	_, err := p.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))

	_, err = p.CurrentIdentity(ctx)
	require.ErrorIs(t, err, identity.ErrNotAuthenticated)

	// Signing out without a session is not an error
	require.NoError(t, p.SignOut(ctx))
}
