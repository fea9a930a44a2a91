package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. APPLYTRACK_API_BASE_URL.
const EnvPrefix = "APPLYTRACK"

var (
	// envVarPattern matches ${VAR} or ${VAR:-default} syntax
	envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)
	// simpleEnvVarPattern matches $VAR syntax
	simpleEnvVarPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// Loader handles configuration loading and merging.
type Loader struct {
	v           *viper.Viper
	configPath  string
	searchPaths []string
	envDir      string
}

// NewLoader creates a new configuration loader. It searches the working
// directory and then the home directory.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, home)
	}

	return &Loader{
		v:           v,
		searchPaths: paths,
		envDir:      ".",
	}
}

// WithConfigPath sets an explicit config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithSearchPaths replaces the directories searched for config files.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.searchPaths = paths
	return l
}

// WithEnvDir sets the directory holding .env files.
func (l *Loader) WithEnvDir(dir string) *Loader {
	l.envDir = dir
	return l
}

// Set overrides a single key, taking precedence over file and environment.
func (l *Loader) Set(key string, value any) *Loader {
	l.v.Set(key, value)
	return l
}

// Load loads the configuration: dotenv files, defaults, config file,
// environment, then ${VAR} expansion.
func (l *Loader) Load() (*Config, error) {
	const op = "config.Load"

	if err := l.loadEnvFiles(); err != nil {
		return nil, apperrors.ConfigWrap(err, op, "failed to load env file")
	}

	l.setDefaults()

	if err := l.loadConfigFile(); err != nil {
		return nil, apperrors.ConfigWrap(err, op, "failed to load config file")
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, apperrors.ConfigWrap(err, op, "failed to unmarshal config")
	}

	l.expandEnvVars(cfg)

	return cfg, nil
}

// loadEnvFiles loads $ENV_FILE alone when set, else .env.local then .env.
// Missing files are ignored and existing variables are never overridden.
func (l *Loader) loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range EnvFiles {
		path := filepath.Join(l.envDir, name)
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// setDefaults sets default values using Viper.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("api.base_url", defaults.API.BaseURL)
	l.v.SetDefault("api.timeout", defaults.API.Timeout)
	l.v.SetDefault("api.rate_limit_rpm", defaults.API.RateLimitRPM)
	l.v.SetDefault("api.circuit_breaker.enabled", defaults.API.CircuitBreaker.Enabled)
	l.v.SetDefault("api.circuit_breaker.threshold", defaults.API.CircuitBreaker.Threshold)
	l.v.SetDefault("api.circuit_breaker.timeout", defaults.API.CircuitBreaker.Timeout)

	l.v.SetDefault("repository.mode", defaults.Repository.Mode)
	l.v.SetDefault("repository.memory_latency", defaults.Repository.MemoryLatency)

	l.v.SetDefault("session.store", defaults.Session.Store)
	l.v.SetDefault("session.file", defaults.Session.File)
	l.v.SetDefault("session.keyring_service", defaults.Session.KeyringService)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.color", defaults.Output.Color)
	l.v.SetDefault("output.verbose", defaults.Output.Verbose)
	l.v.SetDefault("output.log_level", defaults.Output.LogLevel)
}

// loadConfigFile loads the configuration file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", l.configPath, err)
		}
		return nil
	}

	configFile, err := FindConfigFile(l.searchPaths...)
	if err != nil {
		// No config file found - defaults apply
		return nil
	}
	l.v.SetConfigFile(configFile)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	return nil
}

// expandEnvVars expands environment variables in path and URL fields.
func (l *Loader) expandEnvVars(cfg *Config) {
	cfg.API.BaseURL = expandEnvVar(cfg.API.BaseURL)
	cfg.Session.File = expandEnvVar(cfg.Session.File)
}

// expandEnvVar expands environment variables in a string.
// Supports both ${VAR} and $VAR syntax.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultValue := ""
		if len(submatch) > 2 {
			defaultValue = submatch[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})

	result = simpleEnvVarPattern.ReplaceAllStringFunc(result, func(match string) string {
		if value := os.Getenv(match[1:]); value != "" {
			return value
		}
		return match
	})

	return result
}

// GetConfigPath returns the path to the loaded config file, if any.
func (l *Loader) GetConfigPath() string {
	return l.v.ConfigFileUsed()
}

// FindConfigFile searches for a config file and returns its path.
func FindConfigFile(searchPaths ...string) (string, error) {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}

	for _, searchPath := range searchPaths {
		for _, name := range ConfigFileNames {
			for _, ext := range ConfigFileExtensions {
				configFile := filepath.Join(searchPath, name+"."+ext)
				if _, err := os.Stat(configFile); err == nil {
					return configFile, nil
				}
			}
		}
	}

	return "", apperrors.NotFound("config.FindConfigFile", "no config file found")
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader().WithConfigPath(path).Load()
}
