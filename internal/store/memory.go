package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryUserStore はプロセス内メモリにユーザーを保持するフォールバック実装です。
// プロセスが終了するとデータは失われます。
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryUserStore は MemoryUserStore を作成します。
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

// Create はユーザーを作成します。存在確認と書き込みを同一ロック内で
// 行うため、同一ユーザー名への同時作成は1件しか成功しません。
func (s *MemoryUserStore) Create(ctx context.Context, user *User) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("username is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return ErrUserExists
	}
	s.users[user.Username] = *user
	return nil
}

// Get はユーザーを取得します。存在しない場合は (nil, nil) を返します。
func (s *MemoryUserStore) Get(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// MemorySessionStore はプロセス内メモリにセッションを保持するフォールバック実装です。
// 期限切れレコードは取得時に落とし、バックグラウンドの掃除処理でも回収します。
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session

	stop     chan struct{}
	stopOnce sync.Once
}

const sweepInterval = time.Minute

// NewMemorySessionStore は MemorySessionStore を作成し、掃除処理を開始します。
// 使い終わったら Close を呼んでください。
func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[string]Session),
		stop:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Save はトークンをキーにセッションを保存します。
func (s *MemorySessionStore) Save(ctx context.Context, token string, session *Session) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = *session
	return nil
}

// Get はセッションを取得します。存在しない、または期限切れの場合は
// (nil, nil) を返します。
func (s *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if session.Expired(time.Now()) {
		// 期限切れはこの場で片付ける
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, nil
	}
	return &session, nil
}

// Delete はセッションを削除します。存在しないトークンでもエラーにしません。
func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Close は掃除処理を停止します。複数回呼んでも安全です。
func (s *MemorySessionStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

func (s *MemorySessionStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

func (s *MemorySessionStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
		}
	}
}
