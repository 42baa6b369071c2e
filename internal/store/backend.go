package store

import (
	"context"
	"sync/atomic"
)

// BackendKind は現在使用中のストレージ層を表します。
type BackendKind string

const (
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

type backendPair struct {
	kind     BackendKind
	users    UserStore
	sessions SessionStore
}

// Backend はプロセス全体で共有するストレージ選択状態です。
// UserStore と SessionStore の両方を実装し、すべての操作を
// 現在アクティブな実装に委譲します。起動時にメモリへフォール
// バックした後、Redis が復帰した際に Promote で昇格できます。
type Backend struct {
	active atomic.Pointer[backendPair]
}

// NewBackend は初期ストレージを設定した Backend を作成します。
func NewBackend(kind BackendKind, users UserStore, sessions SessionStore) *Backend {
	b := &Backend{}
	b.active.Store(&backendPair{kind: kind, users: users, sessions: sessions})
	return b
}

// Kind は現在アクティブなストレージ層を返します。
func (b *Backend) Kind() BackendKind {
	return b.active.Load().kind
}

// Promote はアクティブなストレージを差し替えます。
// 昇格前にメモリへ書かれたレコードは引き継がれません。
func (b *Backend) Promote(kind BackendKind, users UserStore, sessions SessionStore) {
	b.active.Store(&backendPair{kind: kind, users: users, sessions: sessions})
}

// Create は UserStore.Create を現在の実装に委譲します。
func (b *Backend) Create(ctx context.Context, user *User) error {
	return b.active.Load().users.Create(ctx, user)
}

// Get は UserStore.Get を現在の実装に委譲します。
func (b *Backend) Get(ctx context.Context, username string) (*User, error) {
	return b.active.Load().users.Get(ctx, username)
}

// Sessions はセッション側の委譲ビューを返します。
func (b *Backend) Sessions() SessionStore {
	return backendSessions{b: b}
}

type backendSessions struct {
	b *Backend
}

func (v backendSessions) Save(ctx context.Context, token string, session *Session) error {
	return v.b.active.Load().sessions.Save(ctx, token, session)
}

func (v backendSessions) Get(ctx context.Context, token string) (*Session, error) {
	return v.b.active.Load().sessions.Get(ctx, token)
}

func (v backendSessions) Delete(ctx context.Context, token string) error {
	return v.b.active.Load().sessions.Delete(ctx, token)
}
