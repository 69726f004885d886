package config

const (
	profileBackendVar = "PROFILE_BACKEND"
	profileAPIURLVar  = "PROFILE_API_URL"
	databaseURLVar    = "DATABASE_URL"
	sessionBackendVar = "SESSION_BACKEND"
	redisAddrVar      = "REDIS_ADDR"
	redisPasswordVar  = "REDIS_PASSWORD"
	redisDBVar        = "REDIS_DB"

	BackendMemory   = "memory"
	BackendAPI      = "api"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Backend struct{}

var _ BackendConfig = Backend{}

// GetProfileBackend is "memory", "api" or "postgres"
func (Backend) GetProfileBackend() string {
	return GetEnv(profileBackendVar, BackendMemory)
}

func (Backend) GetProfileAPIURL() string {
	return GetEnv(profileAPIURLVar, "")
}

func (Backend) GetDatabaseURL() string {
	return GetEnv(databaseURLVar, "")
}

// GetSessionBackend is where provider login sessions live: "memory" or "redis"
func (Backend) GetSessionBackend() string {
	return GetEnv(sessionBackendVar, BackendMemory)
}

func (Backend) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Backend) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Backend) GetRedisDB() int {
	return GetEnvInt(redisDBVar, 0)
}
