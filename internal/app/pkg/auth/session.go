package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionCookie     = "session_id"
	DefaultSessionTTL = 24 * time.Hour
	sessionKeyPrefix  = "session:"
)

// SessionData is what a session cookie resolves to.
type SessionData struct {
	UserID   uint    `json:"user_id"`
	Username string  `json:"username"`
	Role     ds.Role `json:"role"`
}

// SessionService keeps sessions in Redis.
type SessionService struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSessionService(host string, port int, password string, db int, ttl time.Duration) (*SessionService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewSessionServiceWithClient(client, ttl), nil
}

func NewSessionServiceWithClient(client redis.UniversalClient, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{client: client, ttl: ttl}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// NewSessionID returns a random identifier for the session cookie.
func NewSessionID() string {
	return uuid.NewString()
}

func (s *SessionService) Create(ctx context.Context, sessionID string, data SessionData) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, sessionKey(sessionID), jsonData, s.ttl).Err()
}

// Get returns nil data without an error when the session does not exist.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// Extend resets the expiry, so active sessions slide forward.
func (s *SessionService) Extend(ctx context.Context, sessionID string) error {
	return s.client.Expire(ctx, sessionKey(sessionID), s.ttl).Err()
}

func (s *SessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionService) Close() error {
	return s.client.Close()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
