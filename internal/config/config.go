package config

import (
	"os"
	"strconv"
	"time"

	"sportpredict/internal/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	DatabaseURL string

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Billing webhook authentication (shared secret from the provider).
	BillingWebhookSecret string

	// Referral commission rates by level.
	DirectCommissionRate   decimal.Decimal
	IndirectCommissionRate decimal.Decimal

	// Base URL used to render referral signup links.
	ReferralBaseURL string

	MinWithdrawalAmount decimal.Decimal

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load reads configuration from the environment, falling back to .env.
// Missing required variables are fatal.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	webhookSecret := os.Getenv("BILLING_WEBHOOK_SECRET")
	if webhookSecret == "" {
		logger.Fatal("BILLING_WEBHOOK_SECRET is not set")
	}

	return &Config{
		AppPort:   envString("APP_PORT", "8080"),
		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "text"),

		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		BillingWebhookSecret: webhookSecret,

		DirectCommissionRate:   envDecimal("DIRECT_COMMISSION_RATE", "0.20"),
		IndirectCommissionRate: envDecimal("INDIRECT_COMMISSION_RATE", "0.05"),

		ReferralBaseURL: envString("REFERRAL_BASE_URL", "https://app.sportpredict.io/signup"),

		MinWithdrawalAmount: envDecimal("MIN_WITHDRAWAL_AMOUNT", "10"),

		APIRateLimit:   envInt("API_RATE_LIMIT", 60),
		APIRateWindow:  envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: envSeconds("AUTH_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func envDecimal(key, def string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
		logger.Warn("invalid decimal in env, using default", "key", key, "default", def)
	}
	return decimal.RequireFromString(def)
}
