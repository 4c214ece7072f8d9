// File: services/session_storage.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"zeus-tournaments/models"
)

// SessionStorage persists auth sessions between page loads, keyed per browser view.
// Load returns nil, nil when nothing is stored.
type SessionStorage interface {
	Load(ctx context.Context, key string) (*models.Session, error)
	Save(ctx context.Context, key string, s *models.Session) error
	Delete(ctx context.Context, key string) error
}

// --------------- in-memory storage -----------------

// MemoryStorage keeps sessions for the life of the process.
type MemoryStorage struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]models.Session)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *s
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

// --------------- redis storage -----------------

// DefaultSessionTTL bounds how long an unused session survives in Redis.
const DefaultSessionTTL = 30 * 24 * time.Hour

// RedisStorage stores sessions as JSON strings so they survive restarts.
type RedisStorage struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// ConnectRedis creates a client for addr/db and verifies it answers a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisStorage wraps a redis client. A zero ttl uses DefaultSessionTTL.
func NewRedisStorage(rdb redis.Cmdable, ttl time.Duration) *RedisStorage {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStorage{rdb: rdb, prefix: "zeus:session:", ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) (*models.Session, error) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", key, err)
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", key, err)
	}
	return &s, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}
