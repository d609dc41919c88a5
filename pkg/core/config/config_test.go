package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"hours", 2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	// General defaults
	if cfg.General.Name != "lexan" {
		t.Errorf("General.Name = %v, want lexan", cfg.General.Name)
	}
	if cfg.General.Environment != "development" {
		t.Errorf("General.Environment = %v, want development", cfg.General.Environment)
	}

	// Analyzer defaults
	if cfg.Analyzer.MaxInputLength != 64*1024 {
		t.Errorf("Analyzer.MaxInputLength = %v, want 65536", cfg.Analyzer.MaxInputLength)
	}
	if cfg.Analyzer.DefaultFormat != "text" {
		t.Errorf("Analyzer.DefaultFormat = %v, want text", cfg.Analyzer.DefaultFormat)
	}
	if cfg.Analyzer.CacheSize != 0 {
		t.Errorf("Analyzer.CacheSize = %v, want 0", cfg.Analyzer.CacheSize)
	}
	if cfg.Analyzer.CacheTTL.Duration != 5*time.Minute {
		t.Errorf("Analyzer.CacheTTL = %v, want 5m", cfg.Analyzer.CacheTTL)
	}

	// Log defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %v, want text", cfg.Log.Format)
	}

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %v, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %v, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Server.MaxRequestSize != 1<<20 {
		t.Errorf("Server.MaxRequestSize = %v, want 1MiB", cfg.Server.MaxRequestSize)
	}

	// gRPC defaults
	if cfg.GRPC.Port != 9090 {
		t.Errorf("GRPC.Port = %v, want 9090", cfg.GRPC.Port)
	}

	// TUI defaults
	if cfg.TUI.InputHeight != 5 {
		t.Errorf("TUI.InputHeight = %v, want 5", cfg.TUI.InputHeight)
	}
	if cfg.TUI.TreeFormat != "tree" {
		t.Errorf("TUI.TreeFormat = %v, want tree", cfg.TUI.TreeFormat)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestConfig_GetServiceAddress(t *testing.T) {
	cfg := Default()

	tests := []struct {
		service  string
		expected string
	}{
		{"server", "0.0.0.0:8080"},
		{"http", "0.0.0.0:8080"},
		{"grpc", "0.0.0.0:9090"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			result := cfg.GetServiceAddress(tt.service)
			if result != tt.expected {
				t.Errorf("GetServiceAddress(%q) = %v, want %v", tt.service, result, tt.expected)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"negative grpc port", func(c *Config) { c.GRPC.Port = -1 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown output format", func(c *Config) { c.Analyzer.DefaultFormat = "csv" }},
		{"negative input limit", func(c *Config) { c.Analyzer.MaxInputLength = -5 }},
		{"negative cache size", func(c *Config) { c.Analyzer.CacheSize = -1 }},
		{"unknown environment", func(c *Config) { c.General.Environment = "staging" }},
		{"unknown tree format", func(c *Config) { c.TUI.TreeFormat = "graph" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Load() expected error for non-existent file")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "lexan.toml", `
[general]
name = "lexan-test"
environment = "test"

[analyzer]
max_input_length = 1024
default_format = "tuple"

[server]
port = 9999
host = "127.0.0.1"
read_timeout = "5s"

[server.cors]
enabled = true
allowed_origins = ["http://localhost:3000"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "lexan-test" {
		t.Errorf("General.Name = %v, want lexan-test", cfg.General.Name)
	}
	if cfg.Analyzer.MaxInputLength != 1024 {
		t.Errorf("Analyzer.MaxInputLength = %v, want 1024", cfg.Analyzer.MaxInputLength)
	}
	if cfg.Analyzer.DefaultFormat != "tuple" {
		t.Errorf("Analyzer.DefaultFormat = %v, want tuple", cfg.Analyzer.DefaultFormat)
	}
	if cfg.Server.Port != 9999 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %v:%v", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout.Duration)
	}
	if !cfg.Server.CORS.Enabled || len(cfg.Server.CORS.AllowedOrigins) != 1 {
		t.Errorf("Server.CORS = %+v", cfg.Server.CORS)
	}

	// Check defaults were applied for missing values
	if cfg.GRPC.Port != 9090 {
		t.Errorf("GRPC.Port = %v, want 9090 (default)", cfg.GRPC.Port)
	}
	if cfg.Server.WriteTimeout.Duration != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want 30s (default)", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "lexan.yaml", `
log:
  level: debug
  format: json
grpc:
  enabled: true
  port: 7070
server:
  write_timeout: 1m
tui:
  tree_format: tuple
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.GRPC.Enabled || cfg.GRPC.Port != 7070 {
		t.Errorf("GRPC = %+v", cfg.GRPC)
	}
	if cfg.Server.WriteTimeout.Duration != time.Minute {
		t.Errorf("Server.WriteTimeout = %v, want 1m", cfg.Server.WriteTimeout.Duration)
	}
	if cfg.TUI.TreeFormat != "tuple" {
		t.Errorf("TUI.TreeFormat = %v, want tuple", cfg.TUI.TreeFormat)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "lexan.toml", `
[server]
port = 123456
`)

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "lexan.toml", "[server\nport = ")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected parse error")
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "lexan.ini", "port=1")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for unsupported extension")
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("LEXAN_LOG_DIR", "/var/log/lexan")

	cfg := &Config{Log: LogConfig{File: "$LEXAN_LOG_DIR/lexan.log"}}
	cfg.expandEnvVars()

	if cfg.Log.File != "/var/log/lexan/lexan.log" {
		t.Errorf("Log.File = %v, want /var/log/lexan/lexan.log", cfg.Log.File)
	}
}

// isolate runs the test in an empty working directory and home
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("LEXAN_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	originalWd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	isolate(t)

	_, err := LoadFromEnv()
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFromEnv() error = %v, want ErrNoConfig", err)
	}
}

func TestLoadFromEnv_Variable(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "custom.toml", "[general]\nname = \"from-env\"\n")
	t.Setenv("LEXAN_CONFIG", path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "from-env" {
		t.Errorf("General.Name = %v, want from-env", cfg.General.Name)
	}
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.General.Name != "lexan" {
		t.Errorf("General.Name = %v, want lexan", cfg.General.Name)
	}

	if _, err := Resolve("/nonexistent/lexan.toml"); err == nil {
		t.Error("Resolve() with explicit missing path should fail")
	}
}
