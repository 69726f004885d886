package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/identity/local"
	"github.com/jrsteele09/mentor-portal/internal/config"
	"github.com/jrsteele09/mentor-portal/internal/metrics"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/profile"
	fakeprofilerepo "github.com/jrsteele09/mentor-portal/profile/repofake"
	"github.com/jrsteele09/mentor-portal/server"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/jrsteele09/mentor-portal/users"
	fakeuserrepo "github.com/jrsteele09/mentor-portal/users/repofake"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testEmail     = "jane@example.com"
	testPassword  = "Password123"
	allowedOrigin = "https://app.example.com"
)

type testFixture struct {
	srv      *httptest.Server
	profiles *fakeprofilerepo.FakeProfileRepo
	registry *session.Registry

	mu    sync.Mutex
	codes map[string]string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("ENV", config.EnvDev)
	t.Setenv("SECURE_COOKIES", "false")
	t.Setenv("ALLOWED_ORIGINS", allowedOrigin)
	t.Setenv("LOADING_WAIT", "2s")

	f := &testFixture{
		profiles: fakeprofilerepo.NewFakeProfileRepo(),
		codes:    make(map[string]string),
	}

	provider, err := local.New(fakeuserrepo.NewFakeUserRepo(), loginsession.NewInMemoryLoginSessionRepo(), local.Config{
		Issuer:     "mentor-portal-test",
		Audience:   "mentor-portal",
		SigningKey: []byte("test-signing-key"),
	},
		local.WithCodeSender(func(_ context.Context, user *users.User, code string) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.codes[user.Email] = code
			return nil
		}),
	)
	require.NoError(t, err)

	recorder := metrics.NewRecorder()
	f.registry, err = session.NewRegistry(provider, f.profiles, session.WithRegistryRecorder(recorder, recorder))
	require.NoError(t, err)

	s, err := server.New(config.New(), f.registry, f.profiles, recorder)
	require.NoError(t, err)

	f.srv = httptest.NewServer(s)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *testFixture) code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

// newBrowser returns a client that keeps cookies and does not follow redirects
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (f *testFixture) do(t *testing.T, c *http.Client, method, path string, body io.Reader, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, body)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (f *testFixture) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	return f.do(t, c, http.MethodGet, path, nil, nil)
}

func (f *testFixture) postForm(t *testing.T, c *http.Client, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	return f.do(t, c, http.MethodPost, path, strings.NewReader(values.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func (f *testFixture) postJSON(t *testing.T, c *http.Client, path string, v any) (*http.Response, string) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return f.do(t, c, http.MethodPost, path, strings.NewReader(string(b)),
		map[string]string{"Content-Type": "application/json"})
}

func signupValues(role string) url.Values {
	return url.Values{
		"firstName":       {"Jane"},
		"lastName":        {"Doe"},
		"email":           {testEmail},
		"password":        {testPassword},
		"confirmPassword": {testPassword},
		"role":            {role},
	}
}

// registerConfirmed signs up and confirms an account through the pages
func (f *testFixture) registerConfirmed(t *testing.T, role string) {
	t.Helper()
	c := newBrowser(t)
	resp, _ := f.postForm(t, c, server.RouteSignup, signupValues(role))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = f.postForm(t, c, server.RouteConfirm, url.Values{"email": {testEmail}, "code": {f.code(testEmail)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

// login returns a signed in browser
func (f *testFixture) login(t *testing.T) *http.Client {
	t.Helper()
	c := newBrowser(t)
	resp, _ := f.postForm(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return c
}

func TestSignupConfirmLoginFlow(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	resp, _ := f.postForm(t, c, server.RouteSignup, signupValues("student"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/confirm?email=jane%40example.com", resp.Header.Get("Location"))

	resp, body := f.get(t, c, resp.Header.Get("Location"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Account created! Please check your email for confirmation code.")
	require.Contains(t, body, `value="jane@example.com"`)

	code := f.code(testEmail)
	require.NotEmpty(t, code)
	resp, _ = f.postForm(t, c, server.RouteConfirm, url.Values{"email": {testEmail}, "code": {code}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?email=jane%40example.com", resp.Header.Get("Location"))

	resp, _ = f.postForm(t, c, server.RouteLogin, url.Values{
		"email":    {testEmail},
		"password": {testPassword},
		"from":     {"/opportunity/42"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/opportunity/42", resp.Header.Get("Location"))

	// No profile yet, so the guard sends the user to profile setup
	resp, _ = f.get(t, c, "/opportunity/42")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/profile-setup?from=%2Fopportunity%2F42", resp.Header.Get("Location"))

	resp, body = f.get(t, c, resp.Header.Get("Location"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `value="/opportunity/42"`)

	resp, _ = f.postForm(t, c, server.RouteProfileSetup, url.Values{
		"school":      {"State University"},
		"major":       {"Physics"},
		"gpa":         {"3.7"},
		"degreeLevel": {"Bachelors"},
		"from":        {"/opportunity/42"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/opportunity/42", resp.Header.Get("Location"))

	rec, err := f.profiles.GetRecord(context.Background(), testEmail)
	require.NoError(t, err)
	require.Equal(t, identity.RoleStudent, rec.Role)
	require.Equal(t, "Physics", rec.Major)
	require.InDelta(t, 3.7, rec.GPA, 0.0001)

	resp, body = f.get(t, c, "/opportunity/42")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Opportunity 42")
	require.Contains(t, body, "Profile setup complete!")

	// A complete profile is sent away from profile setup
	resp, _ = f.get(t, c, server.RouteProfileSetup)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteDashboard, resp.Header.Get("Location"))

	resp, _ = f.postForm(t, c, server.RouteLogout, url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))

	resp, _ = f.get(t, c, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?from=%2Fdashboard", resp.Header.Get("Location"))
}

func TestSignup_ValidationErrors(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	values := signupValues("student")
	values.Set("confirmPassword", "Different123")
	values.Set("email", "not-an-email")
	values.Del("firstName")

	resp, body := f.postForm(t, c, server.RouteSignup, values)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Passwords must match")
	require.Contains(t, body, "First name is required")
	require.NotContains(t, body, testPassword)
	require.Empty(t, f.code("not-an-email"))
}

func TestSignup_DuplicateAccount(t *testing.T) {
	f := setupTestFixture(t)
	f.registerConfirmed(t, "mentor")

	resp, body := f.postForm(t, newBrowser(t), server.RouteSignup, signupValues("mentor"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body, `<p class="field-error">An account with this email already exists.</p>`)
}

func TestConfirm_InvalidCode(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	resp, _ := f.postForm(t, c, server.RouteSignup, signupValues("student"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := f.postForm(t, c, server.RouteConfirm, url.Values{"email": {testEmail}, "code": {"000000x"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, `<p class="field-error">Invalid confirmation code. Please try again.</p>`)
}

func TestSignup_PasswordPolicy(t *testing.T) {
	f := setupTestFixture(t)

	values := signupValues("student")
	values.Set("password", "abcdefgh")
	values.Set("confirmPassword", "abcdefgh")

	resp, body := f.postForm(t, newBrowser(t), server.RouteSignup, values)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, `<p class="field-error">Password did not conform with policy: password must contain at least one uppercase letter</p>`)
	require.Empty(t, f.code(testEmail))
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("unconfirmed account goes to confirmation", func(t *testing.T) {
		c := newBrowser(t)
		resp, _ := f.postForm(t, c, server.RouteSignup, signupValues("student"))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		resp, _ = f.postForm(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/confirm?email=jane%40example.com", resp.Header.Get("Location"))
	})

	resp, _ := f.postForm(t, newBrowser(t), server.RouteConfirm, url.Values{"email": {testEmail}, "code": {f.code(testEmail)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	t.Run("wrong password", func(t *testing.T) {
		resp, body := f.postForm(t, newBrowser(t), server.RouteLogin, url.Values{"email": {testEmail}, "password": {"Wrong12345"}})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, body, "Incorrect email or password")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := f.postForm(t, newBrowser(t), server.RouteLogin, url.Values{"email": {testEmail}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, body, "Password is required")
	})

	t.Run("off-site origin lands on the dashboard", func(t *testing.T) {
		resp, _ := f.postForm(t, newBrowser(t), server.RouteLogin, url.Values{
			"email":    {testEmail},
			"password": {testPassword},
			"from":     {"//evil.example.com"},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteDashboard, resp.Header.Get("Location"))
	})

	t.Run("signed in user skips the login page", func(t *testing.T) {
		c := f.login(t)
		resp, _ := f.get(t, c, "/login?from=%2Fdashboard%2Fmessages")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/dashboard/messages", resp.Header.Get("Location"))
	})

	t.Run("htmx logout", func(t *testing.T) {
		c := f.login(t)
		resp, _ := f.do(t, c, http.MethodPost, server.RouteLogout, nil, map[string]string{"HX-Request": "true"})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("HX-Redirect"))
	})
}

func TestProfileSetup(t *testing.T) {
	f := setupTestFixture(t)
	f.registerConfirmed(t, "mentor")

	t.Run("missing fields", func(t *testing.T) {
		c := f.login(t)
		resp, body := f.postForm(t, c, server.RouteProfileSetup, url.Values{"company": {"Acme"}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, body, "Job title is required")

		_, err := f.profiles.GetRecord(context.Background(), testEmail)
		require.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("backend failure keeps the profile incomplete", func(t *testing.T) {
		c := f.login(t)
		f.profiles.SetFailure(errors.New("profile backend down"))
		defer f.profiles.SetFailure(nil)

		resp, body := f.postForm(t, c, server.RouteProfileSetup, url.Values{"company": {"Acme"}, "jobTitle": {"Engineer"}})
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Contains(t, body, "Failed to save profile. Please try again.")
	})

	t.Run("mentor profile saved", func(t *testing.T) {
		c := f.login(t)
		resp, _ := f.postForm(t, c, server.RouteProfileSetup, url.Values{
			"company":     {"Acme"},
			"jobTitle":    {"Engineer"},
			"linkedinUrl": {"https://www.linkedin.com/in/jane"},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteDashboard, resp.Header.Get("Location"))

		rec, err := f.profiles.GetRecord(context.Background(), testEmail)
		require.NoError(t, err)
		require.Equal(t, identity.RoleMentor, rec.Role)
		require.Equal(t, "Acme", rec.Company)
		require.Nil(t, rec.StudentDetails)
	})

	t.Run("next login finds the profile complete", func(t *testing.T) {
		c := f.login(t)
		resp, body := f.get(t, c, "/dashboard/messages")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Login successful")
	})
}

func TestProfileSetupPost_SignedOut(t *testing.T) {
	f := setupTestFixture(t)
	s, err := server.New(config.New(), f.registry, f.profiles, nil)
	require.NoError(t, err)

	entry, _, err := f.registry.Attach(context.Background(), "")
	require.NoError(t, err)
	<-entry.Store.Ready()

	req := httptest.NewRequest(http.MethodPost, server.RouteProfileSetup, strings.NewReader("company=Acme&jobTitle=Engineer"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(context.WithValue(req.Context(), server.ContextKeySession, entry))
	rec := httptest.NewRecorder()

	s.ProfileSetupPostHandler()(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login?from=%2Fprofile-setup", rec.Header().Get("Location"))
}

type sessionBody struct {
	User *struct {
		Username string `json:"username"`
	} `json:"user"`
	IsAuthenticated   bool   `json:"isAuthenticated"`
	IsLoading         bool   `json:"isLoading"`
	IsProfileComplete bool   `json:"isProfileComplete"`
	UserRole          string `json:"userRole"`
}

func TestSessionAPI(t *testing.T) {
	f := setupTestFixture(t)
	f.registerConfirmed(t, "student")
	c := f.login(t)

	for _, path := range []string{server.RouteAPISession, server.RouteAPISessionRefresh} {
		method := http.MethodGet
		if path == server.RouteAPISessionRefresh {
			method = http.MethodPost
		}
		resp, body := f.do(t, c, method, path, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got sessionBody
		require.NoError(t, json.Unmarshal([]byte(body), &got))
		require.True(t, got.IsAuthenticated, path)
		require.False(t, got.IsLoading, path)
		require.False(t, got.IsProfileComplete, path)
		require.Equal(t, "student", got.UserRole, path)
		require.NotNil(t, got.User, path)
		require.Equal(t, testEmail, got.User.Username, path)
	}
}

func TestGuardAPI(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	// Settle the fresh browser session before asking the guard
	resp, _ := f.get(t, c, server.RouteLogin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := f.postJSON(t, c, server.RouteAPIGuard, map[string]string{"path": "/dashboard"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"kind":"REDIRECT_LOGIN","target":"/login","origin":"/dashboard"}`, body)

	resp, _ = f.postJSON(t, c, server.RouteAPIGuard, map[string]string{"path": "dashboard"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, c, http.MethodPost, server.RouteAPIGuard, strings.NewReader("not json"), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.get(t, c, server.RouteMetrics)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `mentorportal_guard_decisions_total{kind="REDIRECT_LOGIN"} 1`)
}

func TestNotificationsAPI(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	resp, _ := f.postForm(t, c, server.RouteSignup, signupValues("student"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := f.get(t, c, server.RouteAPINotifications)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var active []notify.Notification
	require.NoError(t, json.Unmarshal([]byte(body), &active))
	require.Len(t, active, 1)
	require.Equal(t, notify.KindSuccess, active[0].Kind)

	resp, _ = f.do(t, c, http.MethodDelete, "/api/notifications/"+string(active[0].Handle), nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = f.get(t, c, server.RouteAPINotifications)
	require.JSONEq(t, `[]`, body)
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	resp, _ := f.do(t, c, http.MethodOptions, server.RouteAPISession, nil, map[string]string{"Origin": allowedOrigin})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")

	resp, _ = f.do(t, c, http.MethodOptions, server.RouteAPISession, nil, map[string]string{"Origin": "https://other.example.com"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = f.do(t, c, http.MethodGet, server.RouteAPISession, nil, map[string]string{"Origin": allowedOrigin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSessionCookie(t *testing.T) {
	f := setupTestFixture(t)
	c := &http.Client{Timeout: 5 * time.Second}

	resp, _ := f.get(t, c, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "mentor_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	// A known session is reused without a new cookie
	resp, _ = f.do(t, c, http.MethodGet, server.RouteHome, nil, map[string]string{"Cookie": "mentor_session=" + cookies[0].Value})
	require.Empty(t, resp.Cookies())
	require.Equal(t, 1, f.registry.Len())

	// A malformed cookie is replaced
	resp, _ = f.do(t, c, http.MethodGet, server.RouteHome, nil, map[string]string{"Cookie": "mentor_session=forged"})
	require.Len(t, resp.Cookies(), 1)
	require.NotEqual(t, "forged", resp.Cookies()[0].Value)
	require.Equal(t, 2, f.registry.Len())

	// A well-formed id the server never issued is replaced too
	unknown := uuid.NewString()
	resp, _ = f.do(t, c, http.MethodGet, server.RouteHome, nil, map[string]string{"Cookie": "mentor_session=" + unknown})
	require.Len(t, resp.Cookies(), 1)
	require.NotEqual(t, unknown, resp.Cookies()[0].Value)
	require.Equal(t, 3, f.registry.Len())
}

func TestSessionFixation(t *testing.T) {
	f := setupTestFixture(t)
	f.registerConfirmed(t, "student")

	// The attacker obtains a session id and plants it in the victim's browser
	attacker := newBrowser(t)
	resp, _ := f.get(t, attacker, server.RouteHome)
	require.Len(t, resp.Cookies(), 1)
	planted := resp.Cookies()[0].Value

	victim := newBrowser(t)
	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	victim.Jar.SetCookies(u, []*http.Cookie{{Name: "mentor_session", Value: planted, Path: "/"}})

	resp, _ = f.postForm(t, victim, server.RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Len(t, resp.Cookies(), 1)
	signedIn := resp.Cookies()[0].Value
	require.NotEqual(t, planted, signedIn)

	var got sessionBody
	_, body := f.get(t, victim, server.RouteAPISession)
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.True(t, got.IsAuthenticated)

	resp, body = f.get(t, attacker, server.RouteAPISession)
	require.NotEqual(t, planted, cookieValue(resp))
	got = sessionBody{}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.False(t, got.IsAuthenticated)

	// Logging out retires the signed in id as well
	resp, _ = f.postForm(t, victim, server.RouteLogout, url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Len(t, resp.Cookies(), 1)
	require.NotEqual(t, signedIn, resp.Cookies()[0].Value)

	replay := &http.Client{Timeout: 5 * time.Second}
	_, body = f.do(t, replay, http.MethodGet, server.RouteAPISession, nil, map[string]string{"Cookie": "mentor_session=" + signedIn})
	got = sessionBody{}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.False(t, got.IsAuthenticated)
}

func cookieValue(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "mentor_session" {
			return c.Value
		}
	}
	return ""
}

func TestStaticAndSecurityHeaders(t *testing.T) {
	f := setupTestFixture(t)
	c := newBrowser(t)

	resp, body := f.get(t, c, "/css/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	require.NotEmpty(t, body)

	resp, _ = f.get(t, c, "/css/missing.css")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = f.get(t, c, server.RouteLearnMore)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	require.Contains(t, body, "Mentor Portal")
}
