package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix    = "user:"
	sessionKeyPrefix = "session:"
)

// RedisUserStore はユーザーレコードを Redis に保存します。
type RedisUserStore struct {
	rdb *redis.Client
}

// NewRedisUserStore は RedisUserStore を作成します。
func NewRedisUserStore(rdb *redis.Client) *RedisUserStore {
	return &RedisUserStore{rdb: rdb}
}

// Create はユーザーを作成します。SET NX により存在確認と書き込みを
// 単一操作で行うため、同一ユーザー名への同時作成は1件しか成功しません。
func (s *RedisUserStore) Create(ctx context.Context, user *User) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("username is required")
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, userKey(user.Username), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: redis create user: %v", ErrUnavailable, err)
	}
	if !ok {
		return ErrUserExists
	}
	return nil
}

// Get はユーザーを取得します。存在しない場合は (nil, nil) を返します。
func (s *RedisUserStore) Get(ctx context.Context, username string) (*User, error) {
	data, err := s.rdb.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get user: %v", ErrUnavailable, err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RedisSessionStore はセッションレコードを Redis に保存します。
// 有効期限の失効はキーの TTL に委ねます。
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore は RedisSessionStore を作成します。
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

// Save はトークンをキーにセッションを保存します。
func (s *RedisSessionStore) Save(ctx context.Context, token string, session *Session) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis save session: %v", ErrUnavailable, err)
	}
	return nil
}

// Get はセッションを取得します。存在しない、または期限切れの場合は
// (nil, nil) を返します。
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get session: %v", ErrUnavailable, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	// TTL が効いていても境界付近は自前でも確認する
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

// Delete はセッションを削除します。存在しないトークンでもエラーにしません。
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("%w: redis delete session: %v", ErrUnavailable, err)
	}
	return nil
}

func userKey(username string) string {
	return userKeyPrefix + username
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
