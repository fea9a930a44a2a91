package config

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError []string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "memory mode ignores api url",
			mutate: func(c *Config) {
				c.Repository.Mode = RepositoryModeMemory
				c.API.BaseURL = ""
			},
		},
		{
			name: "bad enums",
			mutate: func(c *Config) {
				c.Repository.Mode = "sqlite"
				c.Session.Store = "vault"
				c.Output.Format = "xml"
				c.Output.LogLevel = "trace"
			},
			wantError: []string{"repository.mode", "session.store", "output.format", "output.log_level"},
		},
		{
			name: "api url problems",
			mutate: func(c *Config) {
				c.API.BaseURL = "localhost:3000"
			},
			wantError: []string{"api.base_url"},
		},
		{
			name: "ftp scheme",
			mutate: func(c *Config) {
				c.API.BaseURL = "ftp://tracker.example.com"
			},
			wantError: []string{"scheme must be http or https"},
		},
		{
			name: "numbers",
			mutate: func(c *Config) {
				c.API.Timeout = 0
				c.API.RateLimitRPM = -1
				c.API.CircuitBreaker.Threshold = 0
				c.API.CircuitBreaker.Timeout = -time.Second
				c.Repository.MemoryLatency = -time.Millisecond
			},
			wantError: []string{
				"api.timeout", "api.rate_limit_rpm", "api.circuit_breaker.threshold",
				"api.circuit_breaker.timeout", "repository.memory_latency",
			},
		},
		{
			name: "disabled breaker skips its checks",
			mutate: func(c *Config) {
				c.API.CircuitBreaker = CircuitBreakerConfig{}
			},
		},
		{
			name: "file store needs a path",
			mutate: func(c *Config) {
				c.Session.Store = SessionStoreFile
				c.Session.File = " "
			},
			wantError: []string{"session.file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if len(tt.wantError) == 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("Validate() kind = %v, want validation", apperrors.GetKind(err))
			}
			for _, substr := range tt.wantError {
				if !strings.Contains(err.Error(), substr) {
					t.Errorf("Validate() error should mention %q, got %q", substr, err.Error())
				}
			}
		})
	}
}

func TestValidator_Warnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://tracker.example.com"
	cfg.Repository.MemoryLatency = time.Second

	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	warnings := v.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("Warnings() = %v, want 2 entries", warnings)
	}
	if !strings.Contains(warnings[0], "plain http") {
		t.Errorf("first warning = %q", warnings[0])
	}
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{}
	e.Addf("a: %d", 1)
	e.Warnf("b")

	if !e.HasErrors() || !e.HasWarnings() {
		t.Fatal("expected both errors and warnings")
	}
	msg := e.Error()
	for _, want := range []string{"configuration validation failed", "Errors:\n  - a: 1", "Warnings:\n  - b"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
