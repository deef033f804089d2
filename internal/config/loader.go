package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Processing
	if c.Process.MaxFileSize <= 0 {
		errs = append(errs, "PROCESS_MAX_FILE_SIZE must be positive")
	}
	if c.Process.MaxConcurrent <= 0 {
		errs = append(errs, "PROCESS_MAX_CONCURRENT must be positive")
	}
	if c.Process.MaxWaitTime <= 0 {
		errs = append(errs, "PROCESS_MAX_WAIT_TIME must be positive")
	}
	if c.Process.ChunkSize <= 0 {
		errs = append(errs, "PROCESS_CHUNK_SIZE must be positive")
	}
	if c.Process.Workers < 0 {
		errs = append(errs, "PROCESS_WORKERS must be non-negative")
	}
	if c.Process.Timeout <= 0 {
		errs = append(errs, "PROCESS_TIMEOUT must be positive")
	}
	if c.Process.HeadRows < 0 {
		errs = append(errs, "PROCESS_HEAD_ROWS must be non-negative")
	}

	// Inference
	validProfiles := map[string]bool{"": true, "default": true, "strict": true, "lenient": true}
	if !validProfiles[strings.ToLower(c.Inference.Profile)] {
		errs = append(errs, fmt.Sprintf("INFERENCE_PROFILE (%q) must be one of: default, strict, lenient", c.Inference.Profile))
	}
	if c.Inference.SampleSize < 0 {
		errs = append(errs, "INFERENCE_SAMPLE_SIZE must be non-negative")
	}
	if c.Inference.NumericMinRatio < 0 || c.Inference.NumericMinRatio > 1 {
		errs = append(errs, "INFERENCE_NUMERIC_MIN_RATIO must be between 0 and 1")
	}

	// Rate limit
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.ProcessLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_PROCESS must be positive when rate limiting is enabled")
	}

	// Security
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Process: {MaxFileSize: %d, MaxConcurrent: %d, ChunkSize: %d, Workers: %d}, ",
		c.Process.MaxFileSize, c.Process.MaxConcurrent, c.Process.ChunkSize, c.Process.Workers)
	fmt.Fprintf(&b, "Inference: {Profile: %q, ProfileFile: %q}, ", c.Inference.Profile, c.Inference.ProfileFile)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
