// Package oidcprovider adapts a managed OpenID Connect identity provider to
// identity.Provider. Sign-in uses the resource owner password grant, cache
// bypass uses the refresh token and registration goes through the provider's
// REST endpoints.
package oidcprovider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Config identifies the provider and this application's client
type Config struct {
	Issuer          string
	ClientID        string
	ClientSecret    string
	RevocationURL   string
	RegistrationURL string
	Scopes          []string
}

// Service creates session-bound providers sharing one discovered configuration.
type Service struct {
	cfg        Config
	sessions   loginsession.Repo
	httpClient *http.Client
	nowTime    func() time.Time

	mu       sync.RWMutex
	endpoint *oauth2.Endpoint
	verifier *oidc.IDTokenVerifier
}

var (
	_ identity.Factory       = (*Service)(nil)
	_ identity.SessionKeeper = (*Service)(nil)
)

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithVerifier sets the ID token verifier instead of discovering it from the issuer
func WithVerifier(verifier *oidc.IDTokenVerifier) Option {
	return func(s *Service) {
		s.verifier = verifier
	}
}

// WithEndpoint sets the token endpoint instead of discovering it from the issuer
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(s *Service) {
		s.endpoint = &endpoint
	}
}

// WithHTTPClient sets the client used for all provider calls
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// New creates the OIDC provider service. Discovery is deferred to first use.
func New(sessionRepo loginsession.Repo, cfg Config, options ...Option) (*Service, error) {
	if sessionRepo == nil {
		return nil, errors.New("[oidcprovider.New] login session repo is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[oidcprovider.New] client id is required")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}

	s := &Service{
		cfg:        cfg,
		sessions:   sessionRepo,
		httpClient: http.DefaultClient,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	if (s.endpoint == nil || s.verifier == nil) && cfg.Issuer == "" {
		return nil, errors.New("[oidcprovider.New] issuer is required when the endpoint or verifier is not set")
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

func (s *Service) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(context.WithValue(ctx, oauth2.HTTPClient, s.httpClient), s.httpClient)
}

// discover returns the oauth2 config and verifier, discovering them once
func (s *Service) discover(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	s.mu.RLock()
	endpoint, verifier := s.endpoint, s.verifier
	s.mu.RUnlock()

	if endpoint == nil || verifier == nil {
		p, err := oidc.NewProvider(s.clientContext(ctx), s.cfg.Issuer)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create OIDC provider")
		}

		s.mu.Lock()
		if s.endpoint == nil {
			ep := p.Endpoint()
			s.endpoint = &ep
		}
		if s.verifier == nil {
			s.verifier = p.Verifier(&oidc.Config{ClientID: s.cfg.ClientID, Now: s.nowTime})
		}
		endpoint, verifier = s.endpoint, s.verifier
		s.mu.Unlock()
	}

	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint:     *endpoint,
		Scopes:       s.cfg.Scopes,
	}, verifier, nil
}
