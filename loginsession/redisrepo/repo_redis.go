package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "mentorportal:loginsession:"

var _ loginsession.Repo = (*RedisLoginSessionRepo)(nil)

// RedisLoginSessionRepo stores login sessions as JSON blobs with a TTL so
// sessions survive a restart and can be shared between replicas.
type RedisLoginSessionRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

type Option func(*RedisLoginSessionRepo)

// WithKeyPrefix overrides the key namespace
func WithKeyPrefix(prefix string) Option {
	return func(r *RedisLoginSessionRepo) {
		r.keyPrefix = prefix
	}
}

// New creates a repo. ttl bounds how long an idle session survives in Redis.
func New(client redis.UniversalClient, ttl time.Duration, opts ...Option) *RedisLoginSessionRepo {
	r := &RedisLoginSessionRepo{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       ttl,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisLoginSessionRepo) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

func (r *RedisLoginSessionRepo) Upsert(ctx context.Context, sessionID string, session loginsession.Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal login session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set login session: %w", err)
	}
	return nil
}

func (r *RedisLoginSessionRepo) Get(ctx context.Context, sessionID string) (loginsession.Session, error) {
	if sessionID == "" {
		return loginsession.Session{}, fmt.Errorf("sessionID is required")
	}
	blob, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return loginsession.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return loginsession.Session{}, fmt.Errorf("redis get login session: %w", err)
	}

	var session loginsession.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return loginsession.Session{}, fmt.Errorf("decode login session: %w", err)
	}
	return session, nil
}

func (r *RedisLoginSessionRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete login session: %w", err)
	}
	return nil
}
