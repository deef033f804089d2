// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Process   ProcessConfig
	Inference InferenceConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 0, no limit)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// ProcessConfig holds file processing settings.
type ProcessConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 100MB)
	MaxFileSize int64 `env:"PROCESS_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel runs (default: 4)
	MaxConcurrent int `env:"PROCESS_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"PROCESS_MAX_WAIT_TIME" default:"30s"`

	// ChunkSize is the number of rows per chunk (default: 100000)
	ChunkSize int `env:"PROCESS_CHUNK_SIZE" default:"100000"`

	// Workers bounds concurrent chunk conversions; 0 means one per CPU
	Workers int `env:"PROCESS_WORKERS" default:"0"`

	// Timeout is the maximum duration for a single run (default: 10m)
	Timeout time.Duration `env:"PROCESS_TIMEOUT" default:"10m"`

	// HeadRows is how many leading rows the result previews (default: 10)
	HeadRows int `env:"PROCESS_HEAD_ROWS" default:"10"`
}

// InferenceConfig holds type inference settings.
type InferenceConfig struct {
	// Profile is the threshold profile: default, strict or lenient
	Profile string `env:"INFERENCE_PROFILE" default:"default"`

	// ProfileFile is an optional YAML file overlaid on the profile
	ProfileFile string `env:"INFERENCE_PROFILE_FILE"`

	// SampleSize overrides the profile's sample size when positive
	SampleSize int `env:"INFERENCE_SAMPLE_SIZE" default:"0"`

	// NumericMinRatio overrides the profile's numeric ratio when positive
	NumericMinRatio float64 `env:"INFERENCE_NUMERIC_MIN_RATIO" default:"0"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ProcessLimit is requests per minute for processing endpoints (default: 10)
	ProcessLimit int `env:"RATE_LIMIT_PROCESS" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// AllowedOrigins is a comma-separated list of CORS origins
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// RequireAPIKey enables X-API-Key authentication on /api routes
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
