// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	AutoMigrate bool

	// Identity provider
	ClerkSecretKey     string
	ClerkWebhookSecret string
	DevJWTSecret       string

	// Score ledger
	ScoreTimezone string

	// HTTP
	AllowedOrigins []string
	MetricsUser    string
	MetricsPass    string
	RateLimitRPS   float64
	RateLimitBurst int

	// Push notifications
	FCMServiceAccountJSON string
	FCMCredentialsFile    string
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3333")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("CLERK_SECRET_KEY", "")
	v.SetDefault("CLERK_WEBHOOK_SECRET", "")
	v.SetDefault("DEV_JWT_SECRET", "")
	v.SetDefault("SCORE_TIMEZONE", "UTC")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("METRICS_USER", "")
	v.SetDefault("METRICS_PASS", "")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("FCM_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json")

	cfg := &Config{
		AppEnv:                v.GetString("APP_ENV"),
		Port:                  v.GetString("PORT"),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		DBMaxConns:            v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:            v.GetInt32("DB_MIN_CONNS"),
		AutoMigrate:           v.GetBool("AUTO_MIGRATE"),
		ClerkSecretKey:        v.GetString("CLERK_SECRET_KEY"),
		ClerkWebhookSecret:    v.GetString("CLERK_WEBHOOK_SECRET"),
		DevJWTSecret:          v.GetString("DEV_JWT_SECRET"),
		ScoreTimezone:         v.GetString("SCORE_TIMEZONE"),
		AllowedOrigins:        splitList(v.GetString("ALLOWED_ORIGINS")),
		MetricsUser:           v.GetString("METRICS_USER"),
		MetricsPass:           v.GetString("METRICS_PASS"),
		RateLimitRPS:          v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:        v.GetInt("RATE_LIMIT_BURST"),
		FCMServiceAccountJSON: v.GetString("FCM_SERVICE_ACCOUNT_JSON"),
		FCMCredentialsFile:    v.GetString("FCM_CREDENTIALS_FILE"),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings needed to serve traffic. memory skips the database requirement.
func (c *Config) Validate(memory bool) error {
	if !memory && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.ClerkSecretKey == "" {
		if c.DevJWTSecret == "" || !c.IsDevelopment() {
			return fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
		}
	}
	if c.ClerkWebhookSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("CLERK_WEBHOOK_SECRET environment variable is not set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "test"
}

// Location resolves the zone used to decide which calendar day "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ScoreTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCORE_TIMEZONE %q: %w", c.ScoreTimezone, err)
	}
	return loc, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
