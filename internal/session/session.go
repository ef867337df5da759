// Package session implements the server-side session store backing the web
// surface. Tokens are opaque random identifiers; everything about the
// session lives in Redis, so logout destroys the state itself rather than
// just the client's copy.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Session is the authenticated identity bound to one token.
type Session struct {
	DoctorID uint   `json:"doctor_id"`
	Username string `json:"username"`
}

// Store is the key-value slice of Redis the manager needs. Get returns
// ErrSessionNotFound for missing or expired keys.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Create issues a fresh token for the doctor and stores the session under it.
func (m *Manager) Create(ctx context.Context, doctorID uint, username string) (string, error) {
	token := uuid.NewString()

	payload, err := json.Marshal(Session{DoctorID: doctorID, Username: username})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}

	if err := m.store.Set(ctx, keyPrefix+token, payload, m.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Get resolves a token to its session. Unknown and expired tokens are the
// same ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := m.store.Get(ctx, keyPrefix+token)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &s, nil
}

// Destroy deletes the server-side state. Destroying an already-gone token
// is not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Del(ctx, keyPrefix+token)
}

// RedisStore adapts a go-redis client to the Store interface.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	return raw, err
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
