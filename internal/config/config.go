package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the dashboard
type Config struct {
	API       APIConfig
	Push      PushConfig
	Dashboard DashboardConfig
	Stub      StubConfig
	Log       LogConfig
}

// APIConfig holds REST backend configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PushConfig holds push channel configuration
type PushConfig struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// DashboardConfig holds console dashboard behaviour
type DashboardConfig struct {
	PollInterval     time.Duration
	FallbackAssets   []string
	FallbackInterval string
}

// StubConfig holds the development stub backend configuration
type StubConfig struct {
	Host         string
	Port         string
	TickInterval time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Push: PushConfig{
			URL:               getEnv("PUSH_WS_URL", ""),
			ReconnectDelay:    getEnvAsDuration("PUSH_RECONNECT_DELAY", 3*time.Second),
			MaxReconnectDelay: getEnvAsDuration("PUSH_MAX_RECONNECT_DELAY", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			PollInterval:     getEnvAsDuration("DASHBOARD_POLL_INTERVAL", 15*time.Second),
			FallbackAssets:   getEnvAsSlice("DASHBOARD_FALLBACK_ASSETS", []string{"BTC", "ETH"}, ","),
			FallbackInterval: getEnv("DASHBOARD_FALLBACK_INTERVAL", "1h"),
		},
		Stub: StubConfig{
			Host:         getEnv("STUB_HOST", "0.0.0.0"),
			Port:         getEnv("STUB_PORT", "8000"),
			TickInterval: getEnvAsDuration("STUB_TICK_INTERVAL", 2*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Push.URL == "" {
		derived, err := derivePushURL(cfg.API.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("PUSH_WS_URL not set and cannot derive from API_BASE_URL: %w", err)
		}
		cfg.Push.URL = derived
	}

	if cfg.Push.ReconnectDelay <= 0 {
		return nil, fmt.Errorf("PUSH_RECONNECT_DELAY must be positive")
	}

	return cfg, nil
}

// derivePushURL builds the push channel URL from the API base URL,
// using the secure variant when the API itself is served over TLS.
func derivePushURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Address returns the full stub server address
func (c *StubConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string, separator string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, separator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
