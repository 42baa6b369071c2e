// Package session はセッショントークンの発行・解決・破棄を提供します。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/yourusername/authgate/internal/store"
)

// Manager はセッションのライフサイクルを管理します。
// 有効期限は作成時点から固定で、アクセスによる延長は行いません。
type Manager struct {
	store store.SessionStore
	ttl   time.Duration
}

// NewManager は Manager を作成します。
func NewManager(sessionStore store.SessionStore, ttl time.Duration) (*Manager, error) {
	if sessionStore == nil {
		return nil, errors.New("session store is nil")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &Manager{store: sessionStore, ttl: ttl}, nil
}

// TTL はセッションの有効期間を返します。クッキーの MaxAge に利用します。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create は新しいトークンを発行してセッションを保存し、トークンを返します。
func (m *Manager) Create(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	session := &store.Session{
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, token, session); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve はトークンに紐づくユーザー名を返します。
// セッションが存在しない、または期限切れの場合は空文字列を返します。
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	session, err := m.store.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.Username, nil
}

// Destroy はセッションを破棄します。既に存在しないトークンでも成功します。
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
