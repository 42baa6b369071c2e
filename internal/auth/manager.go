// Package auth は登録・ログイン・セッション検証を提供します。
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/authgate/internal/session"
	"github.com/yourusername/authgate/internal/store"
)

// SessionCookieName はセッショントークンを運ぶクッキー名です。
const SessionCookieName = "ag_session"

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// ErrInvalidCredentials はユーザー名またはパスワードが一致しない場合に返されます。
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError は入力検証エラーを表します。メッセージはそのまま
// 利用者に返せる内容です。
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// ユーザー不在時にも検証時間を揃えるためのダミーハッシュ（"placeholder" のハッシュ）
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	users         store.UserStore
	sessions      *session.Manager
	secureCookies bool

	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewManager は認証マネージャーを作成します。
func NewManager(users store.UserStore, sessions *session.Manager, secureCookies bool) (*Manager, error) {
	if users == nil {
		return nil, errors.New("user store is nil")
	}
	if sessions == nil {
		return nil, errors.New("session manager is nil")
	}
	return &Manager{
		users:         users,
		sessions:      sessions,
		secureCookies: secureCookies,
		attempts:      make(map[string]*attemptState),
	}, nil
}

// register はユーザーを登録します。検証 → 一意性確認 → 保存の順で進み、
// 検証エラー時はストレージへアクセスしません。登録でセッションは作りません。
func (m *Manager) register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	// 一意性確認はストアの原子的な作成操作に委ねる
	return m.users.Create(ctx, user)
}

// login は資格情報を検証し、成功時に新しいセッショントークンを返します。
func (m *Manager) login(ctx context.Context, username, password string) (string, error) {
	user, err := m.users.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return m.sessions.Create(ctx, user.Username)
}

// SeedUser は開発・テスト用アカウントを登録します。既に存在する場合は
// 何もしません。本番モードでは呼び出さないでください。
func (m *Manager) SeedUser(ctx context.Context, username, password string) error {
	err := m.register(ctx, username, password)
	if errors.Is(err, store.ErrUserExists) {
		return nil
	}
	return err
}

func validateCredentials(username, password string) error {
	switch {
	case username == "" || password == "":
		return &ValidationError{msg: "ユーザー名とパスワードは必須です"}
	case len(username) < minUsernameLen:
		return &ValidationError{msg: "ユーザー名は3文字以上で入力してください"}
	case len(password) < minPasswordLen:
		return &ValidationError{msg: "パスワードは6文字以上で入力してください"}
	}
	return nil
}

func (m *Manager) checkLock(ip string) time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[ip]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

func (m *Manager) recordFailure(ip string) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := time.Now()
	state, ok := m.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		m.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (m *Manager) resetAttempts(ip string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, ip)
}
