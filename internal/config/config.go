package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	IdentityConfig
	BackendConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type IdentityConfig interface {
	GetIdentityProvider() string
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRevocationURL() string
	GetRegistrationURL() string
	GetTokenSigningKey() []byte
	GetIDTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type BackendConfig interface {
	GetProfileBackend() string
	GetProfileAPIURL() string
	GetDatabaseURL() string
	GetSessionBackend() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type SecurityConfig interface {
	GetSessionCookieMaxAge() time.Duration
	GetSessionIdleTimeout() time.Duration
	GetSessionSweepInterval() time.Duration
	GetNotificationDuration() time.Duration
	GetLoadingWait() time.Duration
	GetConfirmationCodeTTL() time.Duration
	GetSecureCookies() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Identity
	Backend
	Security
}

func New() Config {
	return mainConfig{}
}
