package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Accepted enumerations.
var (
	validRepositoryModes = []string{RepositoryModeAPI, RepositoryModeMemory}
	validSessionStores   = []string{SessionStoreKeyring, SessionStoreFile, SessionStoreMemory}
	validOutputFormats   = []string{"text", "json", "yaml", "toml"}
	validLogLevels       = []string{"debug", "info", "warn", "error"}
)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validator validates configuration.
type Validator struct {
	errors *ValidationError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: &ValidationError{},
	}
}

// Validate checks cfg and returns a KindValidation error listing every
// problem. Warnings alone never fail validation; read them with Warnings.
func (v *Validator) Validate(cfg *Config) error {
	v.validateAPI(cfg.API, cfg.Repository.Mode)
	v.validateRepository(cfg.Repository)
	v.validateSession(cfg.Session)
	v.validateOutput(cfg.Output)

	if v.errors.HasErrors() {
		return apperrors.Validation("config.Validate", v.errors.Error())
	}
	return nil
}

// Warnings returns the warnings collected by the last Validate call.
func (v *Validator) Warnings() []string {
	return v.errors.Warnings
}

func (v *Validator) validateAPI(cfg APIConfig, mode string) {
	if mode == RepositoryModeAPI {
		u, err := url.Parse(cfg.BaseURL)
		switch {
		case cfg.BaseURL == "":
			v.errors.Addf("api.base_url: required when repository.mode is %q", RepositoryModeAPI)
		case err != nil || u.Scheme == "" || u.Host == "":
			v.errors.Addf("api.base_url: must be an absolute URL, got %q", cfg.BaseURL)
		case u.Scheme != "http" && u.Scheme != "https":
			v.errors.Addf("api.base_url: scheme must be http or https, got %q", u.Scheme)
		case u.Scheme == "http" && !isLocalHost(u.Hostname()):
			v.errors.Warnf("api.base_url: %s is not local; tokens will be sent over plain http", u.Host)
		}
	}

	if cfg.Timeout <= 0 {
		v.errors.Addf("api.timeout: must be positive, got %s", cfg.Timeout)
	}
	if cfg.RateLimitRPM < 0 {
		v.errors.Addf("api.rate_limit_rpm: must be >= 0, got %d", cfg.RateLimitRPM)
	}
	if cfg.CircuitBreaker.Enabled {
		if cfg.CircuitBreaker.Threshold <= 0 {
			v.errors.Addf("api.circuit_breaker.threshold: must be positive, got %d", cfg.CircuitBreaker.Threshold)
		}
		if cfg.CircuitBreaker.Timeout <= 0 {
			v.errors.Addf("api.circuit_breaker.timeout: must be positive, got %s", cfg.CircuitBreaker.Timeout)
		}
	}
}

func (v *Validator) validateRepository(cfg RepositoryConfig) {
	if !slices.Contains(validRepositoryModes, cfg.Mode) {
		v.errors.Addf("repository.mode: must be one of %v, got %q", validRepositoryModes, cfg.Mode)
	}
	if cfg.MemoryLatency < 0 {
		v.errors.Addf("repository.memory_latency: must be >= 0, got %s", cfg.MemoryLatency)
	}
	if cfg.Mode == RepositoryModeAPI && cfg.MemoryLatency > 0 {
		v.errors.Warnf("repository.memory_latency: ignored when repository.mode is %q", RepositoryModeAPI)
	}
}

func (v *Validator) validateSession(cfg SessionConfig) {
	if !slices.Contains(validSessionStores, cfg.Store) {
		v.errors.Addf("session.store: must be one of %v, got %q", validSessionStores, cfg.Store)
	}
	if cfg.Store == SessionStoreFile && strings.TrimSpace(cfg.File) == "" {
		v.errors.Addf("session.file: required when session.store is %q", SessionStoreFile)
	}
}

func (v *Validator) validateOutput(cfg OutputConfig) {
	if !slices.Contains(validOutputFormats, cfg.Format) {
		v.errors.Addf("output.format: must be one of %v, got %q", validOutputFormats, cfg.Format)
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		v.errors.Addf("output.log_level: must be one of %v, got %q", validLogLevels, cfg.LogLevel)
	}
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// Validate is a convenience function to validate configuration.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
