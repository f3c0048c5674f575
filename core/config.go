package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultReadTimeout     = 30
	DefaultWriteTimeout    = 30
	DefaultIdleTimeout     = 120
	DefaultShutdownTimeout = 15
	DefaultLogFile         = "vram_estimator.log"
	DefaultRatePerMinute   = 120
	DefaultCacheMaxAge     = 3600
)

// Config holds all configuration for the estimator service.
type Config struct {
	// Server configuration
	Host string
	Port int

	// DevMode enables human-readable console logging at debug level.
	DevMode bool

	// LogFile is the path for the rotating structured log file.
	LogFile string

	// HTTP timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// AllowedOrigins is the CORS allow-list for the API. Empty means
	// same-origin only (the embedded frontend needs no CORS).
	AllowedOrigins []string

	// Rate limiting for /api/* (off by default; the estimator is cheap)
	RateLimitEnabled   bool
	RateLimitPerMinute int

	// StaticCacheMaxAge is the Cache-Control max-age for static assets,
	// in seconds.
	StaticCacheMaxAge int
}

// fileConfig mirrors Config for the optional YAML config file. Pointers
// distinguish "not set" from zero values so the file only overrides what
// it mentions.
type fileConfig struct {
	Host                *string  `yaml:"host"`
	Port                *int     `yaml:"port"`
	DevMode             *bool    `yaml:"dev_mode"`
	LogFile             *string  `yaml:"log_file"`
	ReadTimeoutSecs     *int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSecs    *int     `yaml:"write_timeout_seconds"`
	IdleTimeoutSecs     *int     `yaml:"idle_timeout_seconds"`
	ShutdownTimeoutSecs *int     `yaml:"shutdown_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
	RateLimitEnabled    *bool    `yaml:"rate_limit_enabled"`
	RateLimitPerMinute  *int     `yaml:"rate_limit_per_minute"`
	StaticCacheMaxAge   *int     `yaml:"static_cache_max_age"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		DevMode:            false,
		LogFile:            DefaultLogFile,
		ReadTimeout:        DefaultReadTimeout * time.Second,
		WriteTimeout:       DefaultWriteTimeout * time.Second,
		IdleTimeout:        DefaultIdleTimeout * time.Second,
		ShutdownTimeout:    DefaultShutdownTimeout * time.Second,
		AllowedOrigins:     nil,
		RateLimitEnabled:   false,
		RateLimitPerMinute: DefaultRatePerMinute,
		StaticCacheMaxAge:  DefaultCacheMaxAge,
	}
}

// LoadConfig loads configuration with the precedence defaults < config
// file < environment. The config file path comes from CONFIG_FILE
// (default "config.yaml") and is optional; a missing file is not an error,
// an unreadable or malformed one is.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path := GetEnvOrDefault("CONFIG_FILE", "config.yaml")
	if err := applyConfigFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyConfigFile overlays values from an optional YAML file onto cfg.
func applyConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Host != nil {
		cfg.Host = *fc.Host
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.DevMode != nil {
		cfg.DevMode = *fc.DevMode
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.ReadTimeoutSecs != nil {
		cfg.ReadTimeout = time.Duration(*fc.ReadTimeoutSecs) * time.Second
	}
	if fc.WriteTimeoutSecs != nil {
		cfg.WriteTimeout = time.Duration(*fc.WriteTimeoutSecs) * time.Second
	}
	if fc.IdleTimeoutSecs != nil {
		cfg.IdleTimeout = time.Duration(*fc.IdleTimeoutSecs) * time.Second
	}
	if fc.ShutdownTimeoutSecs != nil {
		cfg.ShutdownTimeout = time.Duration(*fc.ShutdownTimeoutSecs) * time.Second
	}
	if fc.AllowedOrigins != nil {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.RateLimitEnabled != nil {
		cfg.RateLimitEnabled = *fc.RateLimitEnabled
	}
	if fc.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *fc.RateLimitPerMinute
	}
	if fc.StaticCacheMaxAge != nil {
		cfg.StaticCacheMaxAge = *fc.StaticCacheMaxAge
	}

	return nil
}

// applyEnv overlays environment variables onto cfg. Env always wins.
func applyEnv(cfg *Config) {
	cfg.Host = GetEnvOrDefault("HOST", cfg.Host)
	cfg.Port = ParseIntEnv("PORT", cfg.Port)
	cfg.DevMode = ParseBoolEnv("DEV_MODE", cfg.DevMode)
	cfg.LogFile = GetEnvOrDefault("LOG_FILE", cfg.LogFile)
	cfg.ReadTimeout = ParseDurationEnv("READ_TIMEOUT", int(cfg.ReadTimeout/time.Second))
	cfg.WriteTimeout = ParseDurationEnv("WRITE_TIMEOUT", int(cfg.WriteTimeout/time.Second))
	cfg.IdleTimeout = ParseDurationEnv("IDLE_TIMEOUT", int(cfg.IdleTimeout/time.Second))
	cfg.ShutdownTimeout = ParseDurationEnv("SHUTDOWN_TIMEOUT", int(cfg.ShutdownTimeout/time.Second))
	if origins := ParseListEnv("CORS_ALLOWED_ORIGINS"); origins != nil {
		cfg.AllowedOrigins = origins
	}
	cfg.RateLimitEnabled = ParseBoolEnv("RATE_LIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.RateLimitPerMinute = ParseIntEnv("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.StaticCacheMaxAge = ParseIntEnv("STATIC_CACHE_MAX_AGE", cfg.StaticCacheMaxAge)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.RateLimitEnabled && c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1 when rate limiting is enabled, got %d", c.RateLimitPerMinute)
	}
	if c.StaticCacheMaxAge < 0 {
		return fmt.Errorf("STATIC_CACHE_MAX_AGE must not be negative, got %d", c.StaticCacheMaxAge)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
