// Package config provides configuration management for applytrack.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Repository modes.
const (
	RepositoryModeAPI    = "api"
	RepositoryModeMemory = "memory"
)

// Session token stores.
const (
	SessionStoreKeyring = "keyring"
	SessionStoreFile    = "file"
	SessionStoreMemory  = "memory"
)

// Config is the root configuration for applytrack.
type Config struct {
	// API configures the tracker API client.
	API APIConfig `mapstructure:"api" json:"api" yaml:"api" toml:"api"`
	// Repository selects where positions and comments live.
	Repository RepositoryConfig `mapstructure:"repository" json:"repository" yaml:"repository" toml:"repository"`
	// Session configures how the bearer token is stored.
	Session SessionConfig `mapstructure:"session" json:"session" yaml:"session" toml:"session"`
	// Output configures output settings.
	Output OutputConfig `mapstructure:"output" json:"output" yaml:"output" toml:"output"`
}

// APIConfig configures the tracker API client.
type APIConfig struct {
	// BaseURL is the API root (default: http://localhost:3000).
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url" toml:"base_url"`
	// Timeout bounds a single request.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`
	// RateLimitRPM caps requests per minute. 0 disables the limiter.
	RateLimitRPM int `mapstructure:"rate_limit_rpm" json:"rate_limit_rpm" yaml:"rate_limit_rpm" toml:"rate_limit_rpm"`
	// CircuitBreaker configures the breaker in front of the API.
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" json:"circuit_breaker" yaml:"circuit_breaker" toml:"circuit_breaker"`
}

// CircuitBreakerConfig configures the API circuit breaker.
type CircuitBreakerConfig struct {
	Enabled   bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Threshold int           `mapstructure:"threshold" json:"threshold" yaml:"threshold" toml:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`
}

// RepositoryConfig selects the repository implementation.
type RepositoryConfig struct {
	// Mode is api or memory.
	Mode string `mapstructure:"mode" json:"mode" yaml:"mode" toml:"mode"`
	// MemoryLatency delays every in-memory call, to mimic a network.
	MemoryLatency time.Duration `mapstructure:"memory_latency" json:"memory_latency" yaml:"memory_latency" toml:"memory_latency"`
}

// SessionConfig configures token storage.
type SessionConfig struct {
	// Store is keyring, file, or memory.
	Store string `mapstructure:"store" json:"store" yaml:"store" toml:"store"`
	// File is the token path when Store is file.
	File string `mapstructure:"file" json:"file" yaml:"file" toml:"file"`
	// KeyringService overrides the keychain service name.
	KeyringService string `mapstructure:"keyring_service" json:"keyring_service,omitempty" yaml:"keyring_service,omitempty" toml:"keyring_service,omitempty"`
}

// OutputConfig configures output settings.
type OutputConfig struct {
	// Format is the output format (text, json, yaml, toml).
	Format string `mapstructure:"format" json:"format" yaml:"format" toml:"format"`
	// Color enables colored output.
	Color bool `mapstructure:"color" json:"color" yaml:"color" toml:"color"`
	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose" json:"verbose" yaml:"verbose" toml:"verbose"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level" toml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:3000",
			Timeout:      10 * time.Second,
			RateLimitRPM: 120,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:   true,
				Threshold: 5,
				Timeout:   30 * time.Second,
			},
		},
		Repository: RepositoryConfig{
			Mode: RepositoryModeAPI,
		},
		Session: SessionConfig{
			Store: SessionStoreKeyring,
			File:  DefaultTokenFile(),
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			LogLevel: "info",
		},
	}
}

// DefaultTokenFile is $HOME/.applytrack/token, or a relative path when the
// home directory is unknown.
func DefaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".applytrack", "token")
	}
	return filepath.Join(home, ".applytrack", "token")
}

// ConfigFileNames to search for.
var ConfigFileNames = []string{
	".applytrack",
}

// ConfigFileExtensions supported by Viper.
var ConfigFileExtensions = []string{
	"yaml",
	"yml",
	"json",
	"toml",
}

// EnvFiles are the dotenv files loaded before configuration, in order.
// Values already present in the environment are never overridden.
var EnvFiles = []string{
	".env.local",
	".env",
}
