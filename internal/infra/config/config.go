package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env               string
	HTTPAddr          string
	APIBaseURL        string
	APITimeout        time.Duration
	SessionTTL        time.Duration
	SessionSweepEvery time.Duration
	SessionCookieName string
	TemplatesGlob     string
	StaticDir         string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":3000"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8000"),
		SessionCookieName: getEnv("SESSION_COOKIE", "bolha_session"),
		TemplatesGlob:     getEnv("TEMPLATES_GLOB", "web/templates/*.tmpl"),
		StaticDir:         getEnv("STATIC_DIR", "web/static"),
	}

	apiTimeout, err := parseDurationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.APITimeout = apiTimeout

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	sweep, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionSweepEvery = sweep

	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return Config{}, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
