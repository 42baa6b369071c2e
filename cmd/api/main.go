// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/session"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// ストレージ層の初期化（Redis優先、失敗時はメモリフォールバック）
	backend, cleanupStores, err := setupStores(cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to set up stores: %v", err)
	}
	defer cleanupStores()

	// セッションマネージャーの初期化
	sessionManager, err := session.NewManager(backend.Sessions(), time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to set up session manager: %v", err)
	}

	// 認証マネージャーの初期化
	authManager, err := auth.NewManager(backend, sessionManager, cfg.GinMode == gin.ReleaseMode)
	if err != nil {
		log.Fatalf("Failed to set up auth manager: %v", err)
	}

	// 開発用テストアカウントの登録（本番モードでは Validate が無効化する）
	if cfg.SeedTestAccount {
		if err := authManager.SeedUser(context.Background(), cfg.TestUsername, cfg.TestPassword); err != nil {
			log.Printf("Failed to seed test account: %v", err)
		}
	}

	// ルーティングの設定
	setupRoutes(router, cfg, authManager)

	// サーバーの起動とシャットダウン処理
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting API server on %s (mode: %s, store: %s)", addr, cfg.GinMode, backend.Kind())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "authgate-api",
		"version": "0.1.0",
	})
}

// setupRoutes は認証エンドポイントとページ配信の配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authManager *auth.Manager) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// 認証エンドポイント
	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)
	router.POST("/logout", authManager.Logout)

	// セッション必須のAPI
	api := router.Group("/api")
	api.Use(authManager.RequireLogin())
	{
		api.GET("/dashboard", authManager.Dashboard)
	}

	// 静的ページの配信（設定されている場合のみ）
	if cfg.StaticDir != "" {
		setupPages(router, cfg.StaticDir, authManager)
	}
}

// setupPages はHTMLページの配信を設定します。ダッシュボードだけは
// セッションがない場合ログイン画面へリダイレクトします。
func setupPages(router *gin.Engine, dir string, authManager *auth.Manager) {
	page := func(name string) gin.HandlerFunc {
		path := filepath.Join(dir, name)
		return func(c *gin.Context) {
			c.File(path)
		}
	}

	router.GET("/", page("index.html"))
	router.GET("/login", page("login.html"))
	router.GET("/register", page("register.html"))
	router.GET("/dashboard", authManager.RedirectToLogin("/login"), page("dashboard.html"))
	router.Static("/static", dir)
}
