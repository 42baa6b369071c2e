// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// ストレージ設定
	RedisURL            string // ユーザー・セッション保存用Redis接続URL
	RedisConnectTimeout int    // Redis接続タイムアウト（秒）
	RedisRetrySeconds   int    // メモリフォールバック中のRedis再接続間隔（秒、0で無効）

	// セッション設定
	SessionTTLMinutes int // セッションの有効期限（分、作成時点から固定）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 静的ファイル設定
	StaticDir string // ログイン画面などのHTMLを置くディレクトリ（空なら配信しない）

	// テストアカウント設定（本番モードでは無効）
	SeedTestAccount bool   // 起動時にテスト用アカウントを登録するか
	TestUsername    string // テストアカウントのユーザー名
	TestPassword    string // テストアカウントのパスワード
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// ストレージ設定
		RedisURL:            getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		RedisConnectTimeout: getEnvAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", 10),
		RedisRetrySeconds:   getEnvAsInt("REDIS_RETRY_SECONDS", 0),

		// セッション設定
		SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 30),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// 静的ファイル設定
		StaticDir: getEnv("STATIC_DIR", ""),

		// テストアカウント設定
		SeedTestAccount: getEnvAsBool("SEED_TEST_ACCOUNT", true),
		TestUsername:    getEnv("TEST_USERNAME", "test"),
		TestPassword:    getEnv("TEST_PASSWORD", "test123"),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if c.RedisConnectTimeout <= 0 {
		return fmt.Errorf("REDIS_CONNECT_TIMEOUT_SECONDS must be positive")
	}

	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required in release mode")
		}
		// テストアカウントは本番モードでは登録しない
		c.SeedTestAccount = false
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
