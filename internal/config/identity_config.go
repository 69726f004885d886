package config

import "time"

const (
	identityProviderVar = "IDENTITY_PROVIDER"
	oidcIssuerVar       = "OIDC_ISSUER"
	oidcClientIDVar     = "OIDC_CLIENT_ID"
	oidcClientSecretVar = "OIDC_CLIENT_SECRET"
	oidcRevocationVar   = "OIDC_REVOCATION_URL"
	registrationURLVar  = "IDENTITY_REGISTRATION_URL"
	signingKeyVar       = "TOKEN_SIGNING_KEY"

	IdentityProviderLocal = "local"
	IdentityProviderOIDC  = "oidc"

	devSigningKey = "mentor-portal-dev-signing-key-change-me"
)

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIdentityProvider is "local" (built-in accounts) or "oidc" (managed provider)
func (Identity) GetIdentityProvider() string {
	return GetEnv(identityProviderVar, IdentityProviderLocal)
}

func (Identity) GetOidcIssuer() string {
	return GetEnv(oidcIssuerVar, "")
}

func (Identity) GetOidcClientID() string {
	return GetEnv(oidcClientIDVar, "mentor-portal")
}

func (Identity) GetOidcClientSecret() string {
	return GetEnv(oidcClientSecretVar, "")
}

func (Identity) GetOidcRevocationURL() string {
	return GetEnv(oidcRevocationVar, "")
}

// GetRegistrationURL is the base URL of the provider's sign-up and confirm endpoints
func (Identity) GetRegistrationURL() string {
	return GetEnv(registrationURLVar, "")
}

func (Identity) GetTokenSigningKey() []byte {
	return []byte(GetEnv(signingKeyVar, devSigningKey))
}

func (Identity) GetIDTokenExpiry() time.Duration {
	return GetEnvDuration("ID_TOKEN_EXPIRY", 1*time.Hour)
}

func (Identity) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_EXPIRY", 24*time.Hour)
}
