// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// BackendConfig holds connectivity to the catalog backend the console
// administers.
type BackendConfig struct {
	BaseURL           string // catalog backend base URL (e.g. https://polaris.internal:8181)
	OAuthTokenURL     string // client-credentials token endpoint (defaults to BaseURL + /api/catalog/v1/oauth/tokens)
	OAuthClientID     string
	OAuthClientSecret string
	OAuthScope        string        // scope requested on token exchange (default "PRINCIPAL_ROLE:ALL")
	RequestsPerSecond float64       // backend request pacing (default 20)
	Burst             int           // pacing burst capacity (default 40)
	RetryMax          int           // transport retry attempts (default 3)
	Timeout           time.Duration // per-request timeout (default 30s)
}

// Validate checks that the backend configuration is internally consistent.
func (b *BackendConfig) Validate() error {
	if b.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL must be set")
	}
	if u, err := url.Parse(b.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", b.BaseURL)
	}
	if b.OAuthClientID == "" || b.OAuthClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET must be set")
	}
	return nil
}

// Config holds the configuration for the console server.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Backend holds catalog backend connectivity.
	Backend BackendConfig

	// Aggregator tuning.
	FanOutLimit       int           // concurrent per-catalog backend calls (default 8)
	CacheTTL          time.Duration // aggregator cache TTL (default 1m)
	OrphanSampleLimit int           // max principals checked for role membership in stats (default 100)

	// StatsRefreshSchedule is a cron expression for background stats
	// recomputation. Empty disables the refresher.
	StatsRefreshSchedule string

	// Rate limiting for the console's own HTTP surface.
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:           os.Getenv("LISTEN_ADDR"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		Env:                  os.Getenv("ENV"),
		StatsRefreshSchedule: os.Getenv("STATS_REFRESH_SCHEDULE"),
		Backend: BackendConfig{
			BaseURL:           os.Getenv("BACKEND_URL"),
			OAuthTokenURL:     os.Getenv("OAUTH_TOKEN_URL"),
			OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
			OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
			OAuthScope:        os.Getenv("OAUTH_SCOPE"),
		},
	}

	// Backend tuning
	if v := os.Getenv("BACKEND_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backend.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("BACKEND_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.Burst = n
		}
	}
	if v := os.Getenv("BACKEND_RETRY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.RetryMax = n
		}
	}
	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}

	// Aggregator tuning
	if v := os.Getenv("FANOUT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FanOutLimit = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("ORPHAN_SAMPLE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OrphanSampleLimit = n
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Backend.OAuthScope == "" {
		cfg.Backend.OAuthScope = "PRINCIPAL_ROLE:ALL"
	}
	if cfg.Backend.OAuthTokenURL == "" && cfg.Backend.BaseURL != "" {
		cfg.Backend.OAuthTokenURL = strings.TrimRight(cfg.Backend.BaseURL, "/") + "/api/catalog/v1/oauth/tokens"
	}
	if cfg.Backend.RequestsPerSecond == 0 {
		cfg.Backend.RequestsPerSecond = 20
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = 40
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.FanOutLimit == 0 {
		cfg.FanOutLimit = 8
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.OrphanSampleLimit == 0 {
		cfg.OrphanSampleLimit = 100
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := cfg.Backend.Validate(); err != nil {
		return nil, err
	}
	if cfg.StatsRefreshSchedule == "" {
		cfg.Warnings = append(cfg.Warnings, "STATS_REFRESH_SCHEDULE not set — stats are computed on demand only")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
			return nil, fmt.Errorf("BACKEND_URL must use https in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
