package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Process: ProcessConfig{
			MaxFileSize:   1,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
			ChunkSize:     10,
			Timeout:       time.Minute,
			HeadRows:      10,
		},
		Inference: InferenceConfig{Profile: "default"},
		Rate:      RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ProcessLimit: 10},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Process.MaxConcurrent != 4 {
		t.Errorf("Process.MaxConcurrent = %d, want %d", cfg.Process.MaxConcurrent, 4)
	}
	if cfg.Process.ChunkSize != 100000 {
		t.Errorf("Process.ChunkSize = %d, want %d", cfg.Process.ChunkSize, 100000)
	}
	if cfg.Process.HeadRows != 10 {
		t.Errorf("Process.HeadRows = %d, want %d", cfg.Process.HeadRows, 10)
	}
	if cfg.Inference.Profile != "default" {
		t.Errorf("Inference.Profile = %q, want %q", cfg.Inference.Profile, "default")
	}
	if len(cfg.Security.AllowedOrigins) != 1 {
		t.Errorf("Security.AllowedOrigins = %v, want one default origin", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PROCESS_CHUNK_SIZE", "500")
	t.Setenv("INFERENCE_PROFILE", "strict")
	t.Setenv("INFERENCE_NUMERIC_MIN_RATIO", "0.95")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Process.ChunkSize != 500 {
		t.Errorf("Process.ChunkSize = %d, want %d", cfg.Process.ChunkSize, 500)
	}
	if cfg.Inference.Profile != "strict" {
		t.Errorf("Inference.Profile = %q, want %q", cfg.Inference.Profile, "strict")
	}
	if cfg.Inference.NumericMinRatio != 0.95 {
		t.Errorf("Inference.NumericMinRatio = %v, want 0.95", cfg.Inference.NumericMinRatio)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PROCESS_WORKERS", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric PROCESS_WORKERS")
	}
	if !strings.Contains(err.Error(), "PROCESS_WORKERS") {
		t.Errorf("error should mention PROCESS_WORKERS: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("PROCESS_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Process.MaxWaitTime != 90*time.Second {
		t.Errorf("Process.MaxWaitTime = %v, want %v", cfg.Process.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"zero chunk size", func(c *Config) { c.Process.ChunkSize = 0 }, "PROCESS_CHUNK_SIZE"},
		{"negative workers", func(c *Config) { c.Process.Workers = -1 }, "PROCESS_WORKERS"},
		{"unknown profile", func(c *Config) { c.Inference.Profile = "loose" }, "INFERENCE_PROFILE"},
		{"ratio above one", func(c *Config) { c.Inference.NumericMinRatio = 1.5 }, "INFERENCE_NUMERIC_MIN_RATIO"},
		{"api key required", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksAPIKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Security.APIKeys = []string{"super-secret-key"}

	str := cfg.String()
	if strings.Contains(str, "super-secret-key") {
		t.Error("String() should mask API keys")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
