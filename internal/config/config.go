package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrMissingAPIURL is returned by Load when no Backend Service URL is configured.
var ErrMissingAPIURL = errors.New("BACKEND_API_URL (or NEXT_PUBLIC_API_URL) is not set")

type Config struct {
	APIURL              string
	Port                string
	Env                 string
	LogLevel            string
	LogFormat           string
	ProtectedPrefixes   []string
	JWKSURL             string
	BackendTimeout      time.Duration
	HealthCheckSchedule string
	FrontendDir         string
}

// IsProduction reports whether cookies must carry the Secure flag.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("GATE_PROTECTED_PREFIXES", "/dashboard,/assignments,/my-submissions")
	v.SetDefault("BACKEND_TIMEOUT", "0s")
	v.SetDefault("HEALTH_CHECK_SCHEDULE", "@every 1m")

	cfg := &Config{
		APIURL:              strings.TrimRight(getEnv(v, "BACKEND_API_URL", v.GetString("NEXT_PUBLIC_API_URL")), "/"),
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("APP_ENV"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		ProtectedPrefixes:   splitList(v.GetString("GATE_PROTECTED_PREFIXES")),
		JWKSURL:             v.GetString("GATE_JWKS_URL"),
		BackendTimeout:      v.GetDuration("BACKEND_TIMEOUT"),
		HealthCheckSchedule: v.GetString("HEALTH_CHECK_SCHEDULE"),
		FrontendDir:         v.GetString("FRONTEND_DIR"),
	}

	if cfg.APIURL == "" {
		return nil, ErrMissingAPIURL
	}
	return cfg, nil
}

func getEnv(v *viper.Viper, key, fallback string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return fallback
}

// splitList splits a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
