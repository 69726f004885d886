package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/identity/local"
	"github.com/jrsteele09/mentor-portal/identity/oidcprovider"
	"github.com/jrsteele09/mentor-portal/internal/config"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/jrsteele09/mentor-portal/loginsession/redisrepo"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/jrsteele09/mentor-portal/profile/apiclient"
	"github.com/jrsteele09/mentor-portal/profile/pgstore"
	fakeprofilerepo "github.com/jrsteele09/mentor-portal/profile/repofake"
	"github.com/jrsteele09/mentor-portal/users"
	fakeuserrepo "github.com/jrsteele09/mentor-portal/users/repofake"
	"github.com/rs/zerolog/log"
)

// Backends are the identity provider and stores selected by configuration
type Backends struct {
	Identity identity.Factory
	Profiles profile.Repo
	// Users is only set for the local identity provider
	Users users.UserRepo

	closers []func()
}

// NewBackends connects the configured backends. Close releases them.
func NewBackends(ctx context.Context, cfg config.Config) (*Backends, error) {
	b := &Backends{}

	sessions, err := b.loginSessions(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	if err := b.initIdentity(cfg, sessions); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.initProfiles(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close releases backend connections in reverse order of creation
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *Backends) loginSessions(ctx context.Context, cfg config.Config) (loginsession.Repo, error) {
	switch backend := cfg.GetSessionBackend(); backend {
	case config.BackendMemory:
		return loginsession.NewInMemoryLoginSessionRepo(), nil
	case config.BackendRedis:
		client, err := redisrepo.NewClient(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, fmt.Errorf("[server.NewBackends] login sessions: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("Login sessions stored in Redis")
		return redisrepo.New(client, cfg.GetRefreshTokenExpiry()), nil
	default:
		return nil, fmt.Errorf("[server.NewBackends] unknown session backend %q", backend)
	}
}

func (b *Backends) initIdentity(cfg config.Config, sessions loginsession.Repo) error {
	switch provider := cfg.GetIdentityProvider(); provider {
	case config.IdentityProviderLocal:
		b.Users = fakeuserrepo.NewFakeUserRepo()
		svc, err := local.New(b.Users, sessions, local.Config{
			Issuer:              cfg.GetBaseURL(),
			Audience:            cfg.GetAppName(),
			SigningKey:          cfg.GetTokenSigningKey(),
			IDTokenExpiry:       cfg.GetIDTokenExpiry(),
			RefreshTokenExpiry:  cfg.GetRefreshTokenExpiry(),
			ConfirmationCodeTTL: cfg.GetConfirmationCodeTTL(),
		})
		if err != nil {
			return fmt.Errorf("[server.NewBackends] local identity provider: %w", err)
		}
		b.Identity = svc
	case config.IdentityProviderOIDC:
		svc, err := oidcprovider.New(sessions, oidcprovider.Config{
			Issuer:          cfg.GetOidcIssuer(),
			ClientID:        cfg.GetOidcClientID(),
			ClientSecret:    cfg.GetOidcClientSecret(),
			RevocationURL:   cfg.GetOidcRevocationURL(),
			RegistrationURL: cfg.GetRegistrationURL(),
		})
		if err != nil {
			return fmt.Errorf("[server.NewBackends] oidc identity provider: %w", err)
		}
		b.Identity = svc
		log.Info().Str("issuer", cfg.GetOidcIssuer()).Msg("Using OIDC identity provider")
	default:
		return fmt.Errorf("[server.NewBackends] unknown identity provider %q", provider)
	}
	return nil
}

func (b *Backends) initProfiles(ctx context.Context, cfg config.Config) error {
	switch backend := cfg.GetProfileBackend(); backend {
	case config.BackendMemory:
		b.Profiles = fakeprofilerepo.NewFakeProfileRepo()
	case config.BackendAPI:
		client, err := apiclient.New(cfg.GetProfileAPIURL())
		if err != nil {
			return fmt.Errorf("[server.NewBackends] profile api: %w", err)
		}
		b.Profiles = client
	case config.BackendPostgres:
		pool, err := pgstore.Connect(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("[server.NewBackends] profile database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.Profiles = pgstore.NewStore(pool)
	default:
		return fmt.Errorf("[server.NewBackends] unknown profile backend %q", backend)
	}
	return nil
}
