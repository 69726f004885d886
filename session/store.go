// Package session holds the per browser session authentication state and
// the operations that change it.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notification texts and dedupe keys
const (
	msgSignupSuccess  = "Account created! Please check your email for confirmation code."
	msgConfirmSuccess = "Email confirmed! You can now log in."
	msgLoginSuccess   = "Login successful"
	msgLogoutSuccess  = "Logged out successfully"

	KeySignup       = "signup"
	KeySignupError  = "signup-error"
	KeyConfirm      = "confirm"
	KeyConfirmError = "confirm-error"
	KeyLogin        = "login"
	KeyLoginError   = "login-error"
	KeyLogout       = "logout"
	KeyLogoutError  = "logout-error"
)

// OutcomeSuccess is reported to the Recorder for operations that succeed
const OutcomeSuccess = "success"

const outcomeSignedOut = "signed-out"

// Recorder observes operation outcomes. outcome is OutcomeSuccess or a FailureKind.
type Recorder interface {
	OperationCompleted(op Op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) OperationCompleted(Op, string) {}

// SignupInput is the registration form
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      identity.Role
}

// Store is the session store of one browser session. Mutating operations run
// one at a time; State may be read concurrently with them.
type Store struct {
	provider identity.Provider
	profiles profile.RecordProvider
	notifier notify.Sink
	logger   zerolog.Logger
	recorder Recorder

	opMu sync.Mutex

	mu    sync.RWMutex
	state State

	ready     chan struct{}
	readyOnce sync.Once
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithLogger sets the logger used for operation failures
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRecorder sets the operation outcome recorder
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates a store in the loading state. Call Boot, or ResolveSession, to
// populate it.
func New(provider identity.Provider, profiles profile.RecordProvider, notifier notify.Sink, options ...Option) (*Store, error) {
	if provider == nil {
		return nil, errors.New("[session.New] identity provider is required")
	}
	if profiles == nil {
		return nil, errors.New("[session.New] profile record provider is required")
	}
	if notifier == nil {
		return nil, errors.New("[session.New] notification sink is required")
	}

	s := &Store{
		provider: provider,
		profiles: profiles,
		notifier: notifier,
		logger:   log.Logger,
		recorder: nopRecorder{},
		state:    initialState(),
		ready:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Boot starts the initial resolution in its own goroutine
func (s *Store) Boot(ctx context.Context) *Store {
	go s.ResolveSession(context.WithoutCancel(ctx))
	return s
}

// Ready is closed once the first resolution has finished
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// rebind switches the store to the provider of a new browser session id.
// provider is written under both locks: operations read it under opMu and
// WithIDToken under mu.
func (s *Store) rebind(provider identity.Provider) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ResolveSession loads the current identity and profile status from the
// providers. Failures leave the store signed out. IsLoading is false afterwards.
func (s *Store) ResolveSession(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.resolve(ctx)
}

// RefreshSession forces the provider to refresh its tokens, then resolves
// again. A refresh rejected by the provider keeps the current state.
// The loading flag is not raised again.
func (s *Store) RefreshSession(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if _, err := s.provider.CurrentSession(ctx, true); err != nil {
		s.logger.Warn().Err(err).Msg("Error refreshing session")
		s.recorder.OperationCompleted(OpRefresh, string(KindGeneric))
		return
	}
	s.recorder.OperationCompleted(OpRefresh, OutcomeSuccess)
	s.resolve(ctx)
}

func (s *Store) resolve(ctx context.Context) {
	defer s.readyOnce.Do(func() { close(s.ready) })

	id, err := s.provider.CurrentIdentity(ctx)
	if err != nil {
		outcome := outcomeSignedOut
		if identity.CodeOf(err) != identity.CodeNotAuthenticated {
			s.logger.Warn().Err(err).Msg("Failed to resolve current identity")
			outcome = string(KindGeneric)
		}
		s.setState(signedOut(false))
		s.recorder.OperationCompleted(OpResolve, outcome)
		return
	}

	complete := s.profileComplete(ctx, id)
	s.setState(State{
		Identity:          id.Clone(),
		Role:              id.Role(),
		IsProfileComplete: complete,
		IsLoading:         false,
	})
	s.recorder.OperationCompleted(OpResolve, OutcomeSuccess)
}

// profileComplete probes for the user's profile record. Any failure other
// than not-found is logged and reported as incomplete.
func (s *Store) profileComplete(ctx context.Context, id *identity.Identity) bool {
	rec, err := s.profiles.GetRecord(s.WithIDToken(ctx), id.Username)
	if errors.Is(err, profile.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Error().Err(err).Str("username", id.Username).Msg("Error checking profile")
		return false
	}
	return rec != nil
}

// WithIDToken returns ctx carrying the session's ID token, for profile
// backends that authenticate as the user. ctx is returned unchanged when
// there is no session.
func (s *Store) WithIDToken(ctx context.Context) context.Context {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	if sess, err := provider.CurrentSession(ctx, false); err == nil && sess != nil && sess.IDToken != "" {
		return profile.WithIDToken(ctx, sess.IDToken)
	}
	return ctx
}

// Signup registers an unconfirmed account. State is not changed.
func (s *Store) Signup(ctx context.Context, in SignupInput) (*identity.Identity, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	email := strings.TrimSpace(in.Email)
	id, err := s.provider.SignUp(ctx, email, in.Password, identity.Attributes{
		identity.AttributeEmail:      email,
		identity.AttributeGivenName:  in.FirstName,
		identity.AttributeFamilyName: in.LastName,
		identity.AttributeRole:       string(in.Role),
	})
	if err != nil {
		return nil, s.fail(OpSignup, KeySignupError, err)
	}

	s.notifier.Notify(msgSignupSuccess, notify.KindSuccess, KeySignup)
	s.recorder.OperationCompleted(OpSignup, OutcomeSuccess)
	return id, nil
}

// ConfirmSignup confirms an account with the emailed code. State is not changed.
func (s *Store) ConfirmSignup(ctx context.Context, email, code string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.provider.ConfirmRegistration(ctx, strings.TrimSpace(email), strings.TrimSpace(code)); err != nil {
		return s.fail(OpConfirm, KeyConfirmError, err)
	}

	s.notifier.Notify(msgConfirmSuccess, notify.KindSuccess, KeyConfirm)
	s.recorder.OperationCompleted(OpConfirm, OutcomeSuccess)
	return nil
}

// Login signs in and probes the profile. On failure the state is untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	id, err := s.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, s.fail(OpLogin, KeyLoginError, err)
	}
	if id == nil {
		return nil, s.fail(OpLogin, KeyLoginError, errors.New("identity provider returned no identity"))
	}

	complete := s.profileComplete(ctx, id)
	s.setState(State{
		Identity:          id.Clone(),
		Role:              id.Role(),
		IsProfileComplete: complete,
		IsLoading:         false,
	})

	s.notifier.Notify(msgLoginSuccess, notify.KindSuccess, KeyLogin)
	s.recorder.OperationCompleted(OpLogin, OutcomeSuccess)
	return id.Clone(), nil
}

// Logout signs out and resets the state to its defaults whatever the provider
// outcome. Failures are notified and logged, never returned.
func (s *Store) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.provider.SignOut(ctx)
	s.setState(signedOut(false))

	if err != nil {
		e := classify(OpLogout, err)
		s.logger.Error().Err(err).Msg("Logout error")
		s.notifier.Notify(e.Message, notify.KindError, KeyLogoutError)
		s.recorder.OperationCompleted(OpLogout, string(e.Kind))
		return
	}
	s.notifier.Notify(msgLogoutSuccess, notify.KindSuccess, KeyLogout)
	s.recorder.OperationCompleted(OpLogout, OutcomeSuccess)
}

// SetProfileComplete sets the profile flag directly, e.g. after profile setup
// has stored the record. It has no effect when signed out.
func (s *Store) SetProfileComplete(complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity == nil {
		return
	}
	s.state.IsProfileComplete = complete
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Store) fail(op Op, key string, err error) error {
	e := classify(op, err)
	s.logger.Debug().Err(err).Str("op", string(op)).Str("kind", string(e.Kind)).Msg("Operation failed")
	s.notifier.Notify(e.Message, notify.KindError, key)
	s.recorder.OperationCompleted(op, string(e.Kind))
	return e
}
