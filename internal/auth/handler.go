package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register は POST /register のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	err := m.register(c.Request.Context(), req.Username, req.Password)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "登録が完了しました",
		})
		return
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": verr.Error(),
		})
	case errors.Is(err, store.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "USERNAME_TAKEN",
			"message": "このユーザー名は既に使われています",
		})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORAGE_UNAVAILABLE",
			"message": "登録処理に失敗しました。時間をおいて再度お試しください",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "予期しないエラーが発生しました",
		})
	}
}

// Login は POST /login のハンドラーです。成功時はセッションクッキーを発行します。
func (m *Manager) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	ip := c.ClientIP()
	if retryAfter := m.checkLock(ip); retryAfter > 0 {
		// Retry-After は秒数またはHTTP-Date形式が推奨されているため秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください",
		})
		return
	}

	token, err := m.login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			remaining := m.recordFailure(ip)
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":              "INVALID_CREDENTIALS",
				"message":           "ユーザー名またはパスワードが正しくありません",
				"remainingAttempts": remaining,
			})
			return
		}
		if errors.Is(err, store.ErrUnavailable) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "ログイン処理に失敗しました。時間をおいて再度お試しください",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "予期しないエラーが発生しました",
		})
		return
	}

	m.resetAttempts(ip)
	m.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "ログインしました",
	})
}

// Logout は POST /logout のハンドラーです。セッションを破棄しクッキーを消します。
// トークンが既に無効でも成功として扱います。
func (m *Manager) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookieName)
	if err := m.sessions.Destroy(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORAGE_UNAVAILABLE",
			"message": "ログアウト処理に失敗しました",
		})
		return
	}
	m.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "ログアウトしました",
	})
}

// Dashboard は GET /api/dashboard のハンドラーです。RequireLogin の後段で使います。
func (m *Manager) Dashboard(c *gin.Context) {
	username := c.GetString(ContextUserKey)
	c.JSON(http.StatusOK, gin.H{
		"message": username,
	})
}

func (m *Manager) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, token, int(m.sessions.TTL().Seconds()), "/", "", m.secureCookies, true)
}

func (m *Manager) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secureCookies, true)
}
