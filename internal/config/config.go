// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need.
type Config struct {
	// HTTP server
	Port string

	// Ledger backend selection
	LedgerBackend   string
	SQLiteDBPath    string
	BigQueryProject string
	BigQueryDataset string

	// Demo identity used when the request carries no user header.
	DefaultUserID string

	// Model
	ModelName          string
	MaxAdviceTokens    int
	MaxRecommendTokens int
	AdviceTimeout      time.Duration
	RecommendTimeout   time.Duration

	// Audit
	AuditBucket string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		LedgerBackend:   getEnv("LEDGER_BACKEND", "memory"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "finance"),

		DefaultUserID: getEnv("DEFAULT_USER_ID", "demo"),

		ModelName:          getEnv("MODEL_NAME", "gemini-2.5-flash"),
		MaxAdviceTokens:    getEnvInt("MAX_ADVICE_TOKENS", 1024),
		MaxRecommendTokens: getEnvInt("MAX_RECOMMEND_TOKENS", 4096),
		AdviceTimeout:      getEnvDuration("ADVICE_TIMEOUT", 60*time.Second),
		RecommendTimeout:   getEnvDuration("RECOMMEND_TIMEOUT", 120*time.Second),

		AuditBucket: getEnv("AUDIT_BUCKET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
