package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type State string

const (
	StateAwaitingName         State = "awaiting_name"
	StateAwaitingExperience   State = "awaiting_experience"
	StateAwaitingGrade        State = "awaiting_grade"
	StateAwaitingSalary       State = "awaiting_salary"
	StateAwaitingRoles        State = "awaiting_roles"
	StateAwaitingCities       State = "awaiting_cities"
	StateAwaitingTechnologies State = "awaiting_technologies"
	StateComplete             State = "complete"
)

// Session is the conversational state of one user.
type Session struct {
	State State          `json:"state"`
	Data  map[string]any `json:"data"`
}

func newSession() *Session {
	return &Session{State: StateAwaitingName, Data: map[string]any{}}
}

// StateStore keeps sessions between messages. Get returns nil without an
// error when the user has no session.
type StateStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return s.clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = s.clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

func (s *Session) clone() *Session {
	c := &Session{State: s.State, Data: make(map[string]any, len(s.Data))}
	for k, v := range s.Data {
		c.Data[k] = v
	}
	return c
}

const (
	redisKeyPrefix    = "job-helper:onboarding:"
	DefaultSessionTTL = 24 * time.Hour
)

// RedisStore keeps sessions as JSON so that restarts do not lose half
// finished onboardings.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the server behind url (redis://...) and checks it answers.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) key(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	s, err := decodeSession(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}

	return s, nil
}

// decodeSession keeps numbers as json.Number so large salaries survive the
// round trip without float rounding.
func decodeSession(raw []byte) (*Session, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var s Session
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
