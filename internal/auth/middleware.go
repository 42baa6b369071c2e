package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireLogin はセッションを検証するミドルウェアを返します。
// 有効なセッションがあればユーザー名をコンテキストに載せて続行し、
// なければ 401 の JSON で打ち切ります。API 系エンドポイント用です。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookieName)
		username, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "セッションの確認に失敗しました",
			})
			return
		}
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		c.Set(ContextUserKey, username)
		c.Next()
	}
}

// RedirectToLogin はページ系エンドポイント用のミドルウェアを返します。
// 有効なセッションがなければ location へリダイレクトします。
func (m *Manager) RedirectToLogin(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookieName)
		username, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil || username == "" {
			c.Redirect(http.StatusFound, location)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, username)
		c.Next()
	}
}
