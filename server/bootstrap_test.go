package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/config"
	"github.com/jrsteele09/mentor-portal/server"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/stretchr/testify/require"
)

func newBackends(t *testing.T) *server.Backends {
	t.Helper()
	backends, err := server.NewBackends(context.Background(), config.New())
	require.NoError(t, err)
	t.Cleanup(backends.Close)
	return backends
}

func TestInitialiseSystem(t *testing.T) {
	t.Setenv("ENV", config.EnvDev)
	t.Setenv("SECURE_COOKIES", "false")
	t.Setenv("BASE_URL", "http://localhost:8080")

	miniRedis := miniredis.RunT(t)
	t.Setenv("SESSION_BACKEND", config.BackendRedis)
	t.Setenv("REDIS_ADDR", miniRedis.Addr())

	ctx := context.Background()
	cfg := config.New()
	backends := newBackends(t)
	require.NotNil(t, backends.Users)

	accounts, err := server.InitialiseSystem(ctx, cfg, backends)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "student@localhost.local", accounts[0].Email)
	require.Equal(t, identity.RoleStudent, accounts[0].Role)
	require.Equal(t, "mentor@localhost.local", accounts[1].Email)
	require.Equal(t, identity.RoleMentor, accounts[1].Role)

	rec, err := backends.Profiles.GetRecord(ctx, accounts[1].Email)
	require.NoError(t, err)
	require.True(t, rec.Complete())

	again, err := server.InitialiseSystem(ctx, cfg, backends)
	require.NoError(t, err)
	require.Empty(t, again)

	registry, err := session.NewRegistry(backends.Identity, backends.Profiles)
	require.NoError(t, err)
	s, err := server.New(cfg, registry, backends.Profiles, nil)
	require.NoError(t, err)
	f := &testFixture{srv: httptest.NewServer(s), registry: registry}
	t.Cleanup(f.srv.Close)

	// The seeded mentor goes straight to the dashboard; the student still needs a profile
	mentor := newBrowser(t)
	resp, _ := f.postForm(t, mentor, server.RouteLogin, url.Values{"email": {accounts[1].Email}, "password": {accounts[1].Password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = f.get(t, mentor, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	student := newBrowser(t)
	resp, _ = f.postForm(t, student, server.RouteLogin, url.Values{"email": {accounts[0].Email}, "password": {accounts[0].Password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = f.get(t, student, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/profile-setup?from=%2Fdashboard", resp.Header.Get("Location"))

	// Login sessions live in Redis
	require.NotEmpty(t, miniRedis.Keys())
}

func TestInitialiseSystem_SkippedOutsideDev(t *testing.T) {
	t.Setenv("ENV", config.EnvProd)

	accounts, err := server.InitialiseSystem(context.Background(), config.New(), newBackends(t))
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestNewBackends_UnknownBackends(t *testing.T) {
	tests := map[string]string{
		"SESSION_BACKEND":   "cassandra",
		"IDENTITY_PROVIDER": "ldap",
		"PROFILE_BACKEND":   "mongo",
	}
	for envVar, value := range tests {
		t.Run(envVar, func(t *testing.T) {
			t.Setenv(envVar, value)
			_, err := server.NewBackends(context.Background(), config.New())
			require.ErrorContains(t, err, value)
		})
	}
}
