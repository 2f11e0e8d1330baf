package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	RedisURL string

	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	MaxUploadBytes     int64
	PlaceholderPreview string
	PreviewBaseURL     string
	ResetOnSuccess     bool

	RateLimitPerMinute int
	RateLimitBurst     int
}

var defaults = map[string]interface{}{
	"APP_ENV":                "development",
	"PORT":                   "8080",
	"ALLOWED_ORIGINS":        "http://localhost:3000",
	"REDIS_URL":              "",
	"SESSION_SECRET":         "change-me",
	"SESSION_TTL":            "30m",
	"SESSION_SWEEP_INTERVAL": "5m",
	"MAX_UPLOAD_BYTES":       5 << 20,
	"PLACEHOLDER_PREVIEW":    "./images/default-pic1.png",
	"PREVIEW_BASE_URL":       "/api/previews",
	"RESET_ON_SUCCESS":       true,
	"RATE_LIMIT_PER_MINUTE":  120,
	"RATE_LIMIT_BURST":       20,
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:             v.GetString("APP_ENV"),
		Port:               v.GetString("PORT"),
		AllowedOrigins:     splitList(v.GetString("ALLOWED_ORIGINS")),
		RedisURL:           v.GetString("REDIS_URL"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		PlaceholderPreview: v.GetString("PLACEHOLDER_PREVIEW"),
		PreviewBaseURL:     v.GetString("PREVIEW_BASE_URL"),
		ResetOnSuccess:     v.GetBool("RESET_ON_SUCCESS"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
	}

	var err error
	cfg.SessionTTL, err = parseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionSweepInterval, err = parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
