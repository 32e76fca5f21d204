package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RENTCHECK_"

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.rentcheck.yaml",               // Project-specific config (highest priority)
	"~/.config/rentcheck/config.yaml", // User config
	"/etc/rentcheck/config.yaml",      // System config (lowest priority)
}

// DefaultEnvFile is read for environment overrides when present
const DefaultEnvFile = ".env"

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	envFile     string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		envFile:     DefaultEnvFile,
	}
}

// NewLoaderWithPaths creates a loader with custom search paths. An empty
// envFile disables .env loading.
func NewLoaderWithPaths(paths []string, envFile string) *Loader {
	return &Loader{
		configPaths: paths,
		envFile:     envFile,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables, including a .env file
// 3. ./.rentcheck.yaml
// 4. ~/.config/rentcheck/config.yaml
// 5. /etc/rentcheck/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file on top of config. Keys absent from the
// file keep their current value.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadEnvFile populates the environment from the .env file. Variables that
// are already set are not overwritten.
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" || !fileExists(l.envFile) {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", l.envFile, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Service
		"SERVICE_URL":     func(v string) error { config.Service.URL = v; return nil },
		"SERVICE_TIMEOUT": func(v string) error { return parseDuration(v, &config.Service.Timeout) },

		// Output
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },

		// Logging
		"LOGGING_FILE":         func(v string) error { config.Logging.File = v; return nil },
		"LOGGING_MAX_SIZE_MB":  func(v string) error { return parseInt(v, &config.Logging.MaxSizeMB) },
		"LOGGING_MAX_BACKUPS":  func(v string) error { return parseInt(v, &config.Logging.MaxBackups) },
		"LOGGING_MAX_AGE_DAYS": func(v string) error { return parseInt(v, &config.Logging.MaxAgeDays) },
		"LOGGING_COMPRESS":     func(v string) error { return parseBool(v, &config.Logging.Compress) },

		// Tracing
		"TRACING_ENABLED":      func(v string) error { return parseBool(v, &config.Tracing.Enabled) },
		"TRACING_ENDPOINT":     func(v string) error { config.Tracing.Endpoint = v; return nil },
		"TRACING_INSECURE":     func(v string) error { return parseBool(v, &config.Tracing.Insecure) },
		"TRACING_SERVICE_NAME": func(v string) error { config.Tracing.ServiceName = v; return nil },
		"TRACING_SAMPLE_RATIO": func(v string) error { return parseFloat(v, &config.Tracing.SampleRatio) },

		// Watch
		"WATCH_MIN_INTERVAL": func(v string) error { return parseDuration(v, &config.Watch.MinInterval) },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		if value := os.Getenv(envVar); value != "" {
			if err := setter(strings.TrimSpace(value)); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// ValidateConfigPath reports whether path may be used as a config file
func ValidateConfigPath(path string) error {
	return validateConfigPath(path)
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
