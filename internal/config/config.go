// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// 認証情報ストアの種類
const (
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ストア設定
	StoreDriver string // redis, postgres, memory
	RedisURL    string // 認証情報を保存する Redis の接続URL
	DatabaseURL string // postgres ドライバ使用時の接続文字列

	// 認証設定
	JWTSecret        string        // トークン署名用の秘密鍵
	TokenTTL         time.Duration // トークンの有効期間（0 なら無期限）
	BcryptCost       int           // bcrypt のコスト
	UniqueUsernames  bool          // サインアップ時にユーザー名の重複を拒否するか
	UnifyLoginErrors bool          // ログイン失敗の理由をクライアントに区別させないか

	// フロントエンド
	ServeFrontend bool // / でログインフォームを配信するか
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	ttl, err := getEnvAsDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverRedis)),
		RedisURL:    getEnv("CREDENTIAL_REDIS_URL", "redis://127.0.0.1:6379/0"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         ttl,
		BcryptCost:       getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		UniqueUsernames:  getEnvAsBool("ENFORCE_UNIQUE_USERNAMES", false),
		UnifyLoginErrors: getEnvAsBool("UNIFY_LOGIN_ERRORS", false),

		ServeFrontend: getEnvAsBool("SERVE_FRONTEND", true),
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
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be one of debug, release, test (got %q)", c.GinMode)
	}

	if len(c.AllowedOrigins()) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must contain at least one origin")
	}

	// 署名鍵はどのモードでも必須（コードに埋め込まない）
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.StoreDriver {
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("CREDENTIAL_REDIS_URL is required for the redis store")
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreDriverMemory:
		if c.GinMode == "release" {
			return fmt.Errorf("memory store is not allowed in release mode")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	return nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
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

// getEnvAsDuration は環境変数を time.Duration として取得します。
// 有効期間の指定ミスは黙って既定値に戻さずエラーにします。
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
