package main

import (
	"context"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/store"
)

// setupStores はストレージ層を初期化します。Redis に接続できれば Redis を、
// できなければプロセス内メモリを使います。選択は起動時に一度だけ行いますが、
// REDIS_RETRY_SECONDS が設定されている場合は復帰監視を開始し、Redis が
// 応答し始めた時点で昇格します（メモリ上のレコードは引き継がれません）。
// 返り値の関数はシャットダウン時の後片付けに使います。
func setupStores(cfg *config.Config, logger *log.Logger) (*store.Backend, func(), error) {
	client, err := dialRedis(cfg)
	if err == nil {
		logger.Printf("Using Redis store at %s", cfg.RedisURL)
		backend := store.NewBackend(
			store.BackendRedis,
			store.NewRedisUserStore(client),
			store.NewRedisSessionStore(client),
		)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Printf("Failed to close Redis client: %v", err)
			}
		}
		return backend, cleanup, nil
	}

	logger.Printf("Redis unavailable (%v), falling back to in-memory store", err)
	memSessions := store.NewMemorySessionStore()
	backend := store.NewBackend(
		store.BackendMemory,
		store.NewMemoryUserStore(),
		memSessions,
	)

	stop := make(chan struct{})
	if cfg.RedisRetrySeconds > 0 {
		go watchRedis(cfg, backend, memSessions, logger, stop)
	}

	cleanup := func() {
		close(stop)
		_ = memSessions.Close()
	}
	return backend, cleanup, nil
}

// dialRedis は接続タイムアウト付きで Redis クライアントを作成し、疎通を確認します。
func dialRedis(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.RedisConnectTimeout) * time.Second
	opt.DialTimeout = timeout

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// watchRedis はメモリフォールバック中に Redis の復帰を監視し、
// 応答し始めたらストレージを昇格します。
func watchRedis(cfg *config.Config, backend *store.Backend, memSessions *store.MemorySessionStore, logger *log.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(cfg.RedisRetrySeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			client, err := dialRedis(cfg)
			if err != nil {
				continue
			}
			backend.Promote(
				store.BackendRedis,
				store.NewRedisUserStore(client),
				store.NewRedisSessionStore(client),
			)
			logger.Printf("Redis is back, promoted store to Redis (in-memory records are not migrated)")
			_ = memSessions.Close()
			return
		}
	}
}
