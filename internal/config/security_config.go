package config

import "time"

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionCookieMaxAge is the lifetime of the browser session cookie
func (Security) GetSessionCookieMaxAge() time.Duration {
	return GetEnvDuration("SESSION_COOKIE_MAX_AGE", 7*24*time.Hour)
}

// GetSessionIdleTimeout is how long an unused browser session is kept in memory
func (Security) GetSessionIdleTimeout() time.Duration {
	return GetEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
}

func (Security) GetSessionSweepInterval() time.Duration {
	return GetEnvDuration("SESSION_SWEEP_INTERVAL", 1*time.Minute)
}

func (Security) GetNotificationDuration() time.Duration {
	return GetEnvDuration("NOTIFICATION_DURATION", 4*time.Second)
}

// GetLoadingWait bounds how long a protected page waits for the first session resolution
func (Security) GetLoadingWait() time.Duration {
	return GetEnvDuration("LOADING_WAIT", 2*time.Second)
}

func (Security) GetConfirmationCodeTTL() time.Duration {
	return GetEnvDuration("CONFIRMATION_CODE_TTL", 24*time.Hour)
}

// GetSecureCookies defaults to true outside DEV
func (Security) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", EnvVars{}.GetEnv() != EnvDev)
}
