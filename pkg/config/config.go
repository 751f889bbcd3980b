package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	RedisURL         string
	Port             string
	IsProduction     bool
	JWTSecret        string
	AuditInTx        bool
	InFlightTTL      time.Duration
	CompletedTTL     time.Duration
	MaxHeaderTextLen int
	RateLimit        string
}

// LoadConfig reads configuration from the environment, with a .env file as
// an optional local override.
func LoadConfig() (*Config, error) {
	// Ignore a missing .env; the environment wins either way.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("AUDIT_IN_TX", false)
	v.SetDefault("IDEMPOTENCY_INFLIGHT_TTL", "5m")
	v.SetDefault("IDEMPOTENCY_COMPLETED_TTL", "24h")
	v.SetDefault("MAX_HEADER_TEXT_LEN", 255)
	v.SetDefault("RATE_LIMIT", "100-S")

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		RedisURL:         v.GetString("REDIS_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AuditInTx:        v.GetBool("AUDIT_IN_TX"),
		InFlightTTL:      v.GetDuration("IDEMPOTENCY_INFLIGHT_TTL"),
		CompletedTTL:     v.GetDuration("IDEMPOTENCY_COMPLETED_TTL"),
		MaxHeaderTextLen: v.GetInt("MAX_HEADER_TEXT_LEN"),
		RateLimit:        v.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL environment variable not set")
	}
	return cfg, nil
}
