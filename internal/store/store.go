// Package store はユーザーとセッションの永続化レイヤーを提供します。
// Redis を優先し、到達できない場合はプロセス内メモリにフォールバックします。
package store

import (
	"context"
	"errors"
)

// ErrUserExists は同名ユーザーが既に存在する場合に返されます。
var ErrUserExists = errors.New("user already exists")

// ErrUnavailable はストレージバックエンドに到達できない場合に返されます。
var ErrUnavailable = errors.New("storage unavailable")

// UserStore はユーザーレコードの永続化インターフェースです。
type UserStore interface {
	// Create はユーザーを作成します。同名ユーザーが存在する場合は
	// ErrUserExists を返します。同一ユーザー名への同時呼び出しでも
	// 成功するのは最大1件です。
	Create(ctx context.Context, user *User) error
	// Get はユーザーを取得します。存在しない場合は (nil, nil) を返します。
	Get(ctx context.Context, username string) (*User, error)
}

// SessionStore はセッションレコードの永続化インターフェースです。
type SessionStore interface {
	// Save はトークンをキーにセッションを保存します。
	Save(ctx context.Context, token string, session *Session) error
	// Get はセッションを取得します。存在しない、または期限切れの場合は
	// (nil, nil) を返します。
	Get(ctx context.Context, token string) (*Session, error)
	// Delete はセッションを削除します。存在しないトークンでもエラーにしません。
	Delete(ctx context.Context, token string) error
}
