package services

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// credentialKeyPrefix is the fixed key under which a session's bearer token
// is persisted.
const credentialKeyPrefix = "authToken:"

// CredentialStore persists the opaque bearer credential for a browser
// session. Get returns "" when no credential is held.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, token string) error
	Clear(ctx context.Context, key string) error
}

// CredentialKey builds the storage key for a session ID.
func CredentialKey(sessionID string) string {
	return credentialKeyPrefix + sessionID
}

// RedisCredentialStore keeps credentials in Redis so sessions survive
// restarts of this server.
type RedisCredentialStore struct {
	rdb *redis.Client
}

func NewRedisCredentialStore(rdb *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{rdb: rdb}
}

func (s *RedisCredentialStore) Get(ctx context.Context, key string) (string, error) {
	token, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisCredentialStore) Set(ctx context.Context, key, token string) error {
	return s.rdb.Set(ctx, key, token, 0).Err()
}

func (s *RedisCredentialStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// MemoryCredentialStore is the redis-less fallback, also used in tests.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{tokens: make(map[string]string)}
}

func (s *MemoryCredentialStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[key], nil
}

func (s *MemoryCredentialStore) Set(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
