package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity Provider（ローカル開発用のデフォルト値を持つ）
	IdentityAPIKey             string
	IdentityAuthDomain         string
	IdentityProjectID          string
	IdentityStorageBucket      string
	IdentityMessagingSenderID  string
	IdentityAppID              string

	// OAuth（連携ログイン）
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Rental API
	RentalAPIBaseURL string
	UpstreamTimeout  time.Duration

	// Session
	SessionSecret        string
	SessionMaxAge        int
	SessionSweepInterval time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitListing int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// IdP設定とレンタルAPIのベースURLはローカル開発用のフォールバック値を持つ。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}

	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	if cfg.GoogleRedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Identity provider: ローカル開発用フォールバック付き
	cfg.IdentityAPIKey = getEnvString("IDENTITY_API_KEY", "local-dev-api-key")
	cfg.IdentityAuthDomain = getEnvString("IDENTITY_AUTH_DOMAIN", "travelguru-dev.example.com")
	cfg.IdentityProjectID = getEnvString("IDENTITY_PROJECT_ID", "travelguru-dev")
	cfg.IdentityStorageBucket = getEnvString("IDENTITY_STORAGE_BUCKET", "travelguru-dev.appspot.com")
	cfg.IdentityMessagingSenderID = getEnvString("IDENTITY_MESSAGING_SENDER_ID", "000000000000")
	cfg.IdentityAppID = getEnvString("IDENTITY_APP_ID", "1:000000000000:web:local")

	// Rental API: ローカル開発用フォールバック付き
	cfg.RentalAPIBaseURL = getEnvString("RENTAL_API_URL", "http://localhost:3000")
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionSweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitListing = getEnvInt("RATE_LIMIT_LISTING", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
