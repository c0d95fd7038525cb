// Package config loads the engine settings from YAML.
//
// Every key is optional; a file only needs the values it changes:
//
//	debounce: 300ms
//	allowed_extensions: [csv, tsv]
//	max_file_bytes: 1048576
//	messages:
//	  email:
//	    email: "That email does not look right"
//	file_error: "That file could not be read"
//	confirm:
//	  clear: "Start over?"
//	log:
//	  level: debug
//	output: text
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/typing"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ConfirmConfig holds the confirmation questions.
type ConfirmConfig struct {
	Clear string `yaml:"clear,omitempty"`
	Leave string `yaml:"leave,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

// Config is the top-level configuration.
type Config struct {
	Debounce          time.Duration                `yaml:"debounce,omitempty"`
	AllowedExtensions []string                     `yaml:"allowed_extensions,omitempty"`
	MaxFileBytes      int64                        `yaml:"max_file_bytes,omitempty"`
	Messages          map[string]map[string]string `yaml:"messages,omitempty"` // field -> code -> text
	FileError         string                       `yaml:"file_error,omitempty"`
	Confirm           ConfirmConfig                `yaml:"confirm,omitempty"`
	Log               LogConfig                    `yaml:"log,omitempty"`
	Output            string                       `yaml:"output,omitempty"` // renderer name
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Debounce:          typing.DefaultWindow,
		AllowedExtensions: []string{"csv"},
		MaxFileBytes:      csvingest.DefaultMaxBytes,
		FileError:         form.DefaultFileErrorMessage,
		Confirm: ConfirmConfig{
			Clear: form.DefaultClearMessage,
			Leave: navigation.DefaultLeaveMessage,
		},
		Log:    LogConfig{Level: "info"},
		Output: "text",
	}
}

// Load overlays the file at path onto Default. An empty path returns the
// defaults; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML data onto Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("debounce must be positive, got %s", c.Debounce))
	}
	if len(c.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("allowed_extensions must not be empty"))
	}
	if c.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_file_bytes must be positive, got %d", c.MaxFileBytes))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Catalog returns the default messages with the configured overrides.
func (c Config) Catalog() validation.Catalog {
	return validation.DefaultCatalog().With(c.Messages)
}

// Rules returns the default rule set for the configured extensions.
func (c Config) Rules() *validation.RuleSet {
	return validation.DefaultRuleSet(c.AllowedExtensions...)
}

func (c *Config) normalize() {
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.AllowedExtensions = exts
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
}
