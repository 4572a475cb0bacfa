package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slot-bot/types"
)

// SessionStore keeps per-conversation state in Redis: the locale preference
// (no TTL) and the in-progress booking selection (TTL'd).
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string { return fmt.Sprintf("session:%d", chatID) }
func localeKey(chatID int64) string  { return fmt.Sprintf("lang:%d", chatID) }

// Get returns the session for chatID, or a fresh idle one if none is stored.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (*types.Session, error) {
	val, err := s.client.Get(ctx, sessionKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return &types.Session{ChatID: chatID, State: types.StateIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get session: %w", err)
	}
	var sess types.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("storage: decode session: %w", err)
	}
	return &sess, nil
}

// Save stores the session and refreshes its TTL
func (s *SessionStore) Save(ctx context.Context, sess *types.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("storage: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ChatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}

// GetLocale returns the stored locale preference, "" if none.
func (s *SessionStore) GetLocale(ctx context.Context, chatID int64) (string, error) {
	val, err := s.client.Get(ctx, localeKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: get locale: %w", err)
	}
	return val, nil
}

func (s *SessionStore) SaveLocale(ctx context.Context, chatID int64, locale string) error {
	if err := s.client.Set(ctx, localeKey(chatID), locale, 0).Err(); err != nil {
		return fmt.Errorf("storage: save locale: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
