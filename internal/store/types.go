package store

import "time"

// User は登録済みユーザーの永続化レコードです。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session はセッショントークンに紐づく認証済みユーザー情報です。
// 有効期限は作成時点から固定で、アクセスしても延長されません。
type Session struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired はセッションが有効期限切れかどうかを返します。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
