package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when a configuration fails validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoConfig is returned by LoadFromEnv when no config file exists
	ErrNoConfig = errors.New("no config file found")
)

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general" json:"general"`
	Analyzer AnalyzerConfig `toml:"analyzer" yaml:"analyzer" json:"analyzer"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log"`
	Server   ServerConfig   `toml:"server" yaml:"server" json:"server"`
	GRPC     GRPCConfig     `toml:"grpc" yaml:"grpc" json:"grpc"`
	TUI      TUIConfig      `toml:"tui" yaml:"tui" json:"tui"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Environment string `toml:"environment" yaml:"environment" json:"environment"`
}

// AnalyzerConfig holds limits and defaults of the analysis facade
type AnalyzerConfig struct {
	MaxInputLength int    `toml:"max_input_length" yaml:"max_input_length" json:"max_input_length"`
	DefaultFormat  string `toml:"default_format" yaml:"default_format" json:"default_format"`

	// CacheSize > 0 keeps that many results in memory; 0 disables the cache
	CacheSize int      `toml:"cache_size" yaml:"cache_size" json:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level   string `toml:"level" yaml:"level" json:"level"`
	Format  string `toml:"format" yaml:"format" json:"format"`
	File    string `toml:"file" yaml:"file" json:"file"`
	Journal bool   `toml:"journal" yaml:"journal" json:"journal"`
}

// ServerConfig holds HTTP/WebSocket server configuration
type ServerConfig struct {
	Port           int        `toml:"port" yaml:"port" json:"port"`
	Host           string     `toml:"host" yaml:"host" json:"host"`
	ReadTimeout    Duration   `toml:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   Duration   `toml:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	MaxRequestSize int64      `toml:"max_request_size" yaml:"max_request_size" json:"max_request_size"`
	CORS           CORSConfig `toml:"cors" yaml:"cors" json:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
}

// GRPCConfig holds gRPC server configuration
type GRPCConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Port    int    `toml:"port" yaml:"port" json:"port"`
	Host    string `toml:"host" yaml:"host" json:"host"`
}

// TUIConfig holds terminal UI settings
type TUIConfig struct {
	InputHeight int    `toml:"input_height" yaml:"input_height" json:"input_height"`
	TreeFormat  string `toml:"tree_format" yaml:"tree_format" json:"tree_format"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in paths
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from the LEXAN_CONFIG environment variable
// or the first default location that exists
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("LEXAN_CONFIG")
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/lexan.toml",
			"./lexan.toml",
			"./lexan.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/lexan/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w, set LEXAN_CONFIG or create configs/lexan.toml", ErrNoConfig)
	}

	return Load(path)
}

// Resolve loads path when given, otherwise falls back to LoadFromEnv and,
// when no file exists at all, to the defaults
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if errors.Is(err, ErrNoConfig) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the configuration against the schema
func (c *Config) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validateSchema(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "lexan"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}

	// Analyzer
	if c.Analyzer.MaxInputLength == 0 {
		c.Analyzer.MaxInputLength = 64 * 1024
	}
	if c.Analyzer.DefaultFormat == "" {
		c.Analyzer.DefaultFormat = "text"
	}
	if c.Analyzer.CacheTTL.Duration == 0 {
		c.Analyzer.CacheTTL.Duration = 5 * time.Minute
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.MaxRequestSize == 0 {
		c.Server.MaxRequestSize = 1 << 20
	}

	// gRPC
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}

	// TUI
	if c.TUI.InputHeight == 0 {
		c.TUI.InputHeight = 5
	}
	if c.TUI.TreeFormat == "" {
		c.TUI.TreeFormat = "tree"
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Log.File = os.ExpandEnv(c.Log.File)
}

// GetServiceAddress returns the listen address of a server
func (c *Config) GetServiceAddress(service string) string {
	switch service {
	case "server", "http":
		return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	case "grpc":
		return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
	default:
		return ""
	}
}
