package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/mentor-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "BASE_URL", "LOG_LEVEL", "IDENTITY_PROVIDER", "PROFILE_BACKEND",
		"SESSION_BACKEND", "REDIS_DB", "ALLOWED_ORIGINS", "NOTIFICATION_DURATION", "SECURE_COOKIES"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDev())
	require.Equal(t, "debug", c.GetLogLevel())
	require.Equal(t, "http://localhost:8080", c.GetBaseURL())
	require.Equal(t, config.IdentityProviderLocal, c.GetIdentityProvider())
	require.Equal(t, config.BackendMemory, c.GetProfileBackend())
	require.Equal(t, config.BackendMemory, c.GetSessionBackend())
	require.Equal(t, 0, c.GetRedisDB())
	require.Equal(t, 4*time.Second, c.GetNotificationDuration())
	require.NotEmpty(t, c.GetTokenSigningKey())
	require.False(t, c.GetSecureCookies())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "prod")
	t.Setenv("BASE_URL", "https://mentors.example.com/")
	t.Setenv("IDENTITY_PROVIDER", "oidc")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOADING_WAIT", "750ms")
	t.Setenv("SESSION_IDLE_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com/")
	t.Setenv("SECURE_COOKIES", "")
	t.Setenv("LOG_LEVEL", "")
	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "PROD", c.GetEnv())
	require.False(t, c.IsDev())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, "https://mentors.example.com", c.GetBaseURL())
	require.Equal(t, config.IdentityProviderOIDC, c.GetIdentityProvider())
	require.Equal(t, 3, c.GetRedisDB())
	require.Equal(t, 750*time.Millisecond, c.GetLoadingWait())
	require.Equal(t, 30*time.Minute, c.GetSessionIdleTimeout())
	require.True(t, c.GetSecureCookies())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.Equal(t, "https://a.example.com, https://b.example.com", origins.String())
}
