// Package config は環境変数から書籍APIサーバーとクライアントの設定を読み込む。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 書籍APIサーバーの設定で使用する環境変数とデフォルト値。
const (
	EnvPort           = "PORT"
	EnvDBPath         = "BOOKAPI_DB_PATH"
	EnvJWTSecret      = "JWT_SECRET"
	EnvTokenTTL       = "BOOKAPI_TOKEN_TTL"
	EnvAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvLogFile        = "BOOKAPI_LOG_FILE"

	DefaultPort      = "8000"
	DefaultDBPath    = "books.db"
	DefaultJWTSecret = "dev-secret-key"
	DefaultTokenTTL  = 30 * time.Minute
)

// クライアントの設定で使用する環境変数とデフォルト値。
const (
	EnvAPIURL      = "BOOKMANAGER_API_URL"
	EnvStoragePath = "BOOKMANAGER_STORAGE_PATH"

	DefaultAPIURL = "http://localhost:8000"
)

// Server は書籍APIサーバーの設定。
type Server struct {
	// Port はリッスンポート。
	Port string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
	// JWTSecret はアクセストークンの署名鍵。
	JWTSecret string
	// TokenTTL はアクセストークンの有効期間。
	TokenTTL time.Duration
	// AllowedOrigins はCORSで許可するオリジン。"*" は全て許可。
	AllowedOrigins []string
	// LogFile は標準エラー出力に加えてログを書き出すファイル。空の場合は出力しない。
	LogFile string
}

// Client は書籍クライアントの設定。
type Client struct {
	// APIURL は書籍APIのベースURL。
	APIURL string
	// StoragePath は認証トークンを保存するローカルストレージのパス。
	StoragePath string
}

// LoadServer は環境変数からサーバー設定を読み込む。
func LoadServer() (*Server, error) {
	ttl := DefaultTokenTTL
	if v, ok := os.LookupEnv(EnvTokenTTL); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s の値 %q が不正です: %w", EnvTokenTTL, v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("%s は正の値である必要があります: %q", EnvTokenTTL, v)
		}
		ttl = parsed
	}

	return &Server{
		Port:           getEnvOr(EnvPort, DefaultPort),
		DBPath:         getEnvOr(EnvDBPath, DefaultDBPath),
		JWTSecret:      getEnvOr(EnvJWTSecret, DefaultJWTSecret),
		TokenTTL:       ttl,
		AllowedOrigins: splitList(getEnvOr(EnvAllowedOrigins, "*")),
		LogFile:        os.Getenv(EnvLogFile),
	}, nil
}

// LoadClient は環境変数からクライアント設定を読み込む。
// ストレージパスの既定値は ~/.bookmanager/storage.db。
func LoadClient() (*Client, error) {
	storagePath := os.Getenv(EnvStoragePath)
	if storagePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("ホームディレクトリの取得に失敗: %w", err)
		}
		storagePath = filepath.Join(home, ".bookmanager", "storage.db")
	}

	return &Client{
		APIURL:      getEnvOr(EnvAPIURL, DefaultAPIURL),
		StoragePath: storagePath,
	}, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// splitList はカンマ区切りの文字列を空要素を除いて分割する。
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
