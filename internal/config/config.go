package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
}

// ServiceConfig locates the contradiction analysis service
type ServiceConfig struct {
	URL     string        `yaml:"url" json:"url" validate:"required,url"` // base URL, /upload/ is appended
	Timeout time.Duration `yaml:"timeout" json:"timeout"`                 // per-upload timeout
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	NoEmoji       bool   `yaml:"no_emoji" json:"no_emoji"`
}

// LoggingConfig configures the rotated log file. An empty file disables it.
type LoggingConfig struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// TracingConfig configures OTLP trace export
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" validate:"required_if=Enabled true"` // host:port of the OTLP/HTTP collector
	Insecure    bool    `yaml:"insecure" json:"insecure"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio" validate:"gte=0,lte=1"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	MinInterval time.Duration `yaml:"min_interval" json:"min_interval"` // minimum time between re-submissions
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: 120 * time.Second,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Theme:         "default",
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: "rentcheck",
			SampleRatio: 1.0,
		},
		Watch: WatchConfig{
			MinInterval: 2 * time.Second,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServiceConfig() error {
	if !strings.HasPrefix(c.Service.URL, "http://") && !strings.HasPrefix(c.Service.URL, "https://") {
		return fmt.Errorf("invalid service url: %s (must start with http:// or https://)", c.Service.URL)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service timeout must be greater than 0")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

func (c *Config) validateWatchConfig() error {
	if c.Watch.MinInterval < 0 {
		return fmt.Errorf("watch min_interval must be non-negative")
	}
	return nil
}

func describeValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL, got %q", field, fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
