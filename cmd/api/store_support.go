package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/loginapp/internal/auth"
	"github.com/yourusername/loginapp/internal/config"
	"github.com/yourusername/loginapp/internal/credentials"
)

const storeConnectTimeout = 5 * time.Second

// setupStore は設定に応じた認証情報ストアを作成し、終了時に呼ぶ close 関数と一緒に返します。
func setupStore(ctx context.Context, cfg *config.Config) (auth.CredentialStore, func(), error) {
	opts := credentials.Options{UniqueUsernames: cfg.UniqueUsernames}

	ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse CREDENTIAL_REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return credentials.NewRedisStore(rdb, opts), func() { _ = rdb.Close() }, nil

	case config.StoreDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := credentials.NewPostgresStore(pool, opts)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case config.StoreDriverMemory:
		log.Printf("Using in-memory credential store; records are lost on restart")
		return credentials.NewMemoryStore(opts), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// setupAuth はストアと設定から認証サービスを組み立てます。
func setupAuth(cfg *config.Config, store auth.CredentialStore) (*auth.Service, error) {
	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewService(store, hasher, tokens, log.Default())
}
