// Package config loads formcheck configuration.
//
// Configuration comes from a single file named by the --config flag or the
// FORMCHECK_CONFIG environment variable. YAML and TOML files are accepted and
// are merged over Default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formengine/internal/logging"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "FORMCHECK_CONFIG"

// ErrNoConfig is returned by Load when EnvVar is unset.
var ErrNoConfig = errors.New("config: " + EnvVar + " environment variable not set")

// Config is the formcheck configuration.
type Config struct {
	// Form holds the form level validation settings.
	Form FormOptions `yaml:"form" toml:"form"`

	// Locale selects the validator message language.
	// Default: en
	Locale string `yaml:"locale" toml:"locale"`

	// LocaleFiles are extra go-i18n message files.
	LocaleFiles []string `yaml:"locale_files" toml:"locale_files"`

	// LogLevel is a zap level name.
	// Default: info
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// Lookups is a lookup document used to populate the schema.
	Lookups string `yaml:"lookups" toml:"lookups"`
}

// FormOptions mirrors the form options of a form instance.
type FormOptions struct {
	ValidateAsync        bool `yaml:"validateAsync" toml:"validateAsync"`
	ValidateAfterChanged bool `yaml:"validateAfterChanged" toml:"validateAfterChanged"`

	// ValidateDebounceTime is in milliseconds.
	// Default: 500
	ValidateDebounceTime *int `yaml:"validateDebounceTime" toml:"validateDebounceTime"`

	// FieldIDPrefix prefixes generated DOM ids.
	FieldIDPrefix string `yaml:"fieldIdPrefix" toml:"fieldIdPrefix"`
}

// Default returns the configuration used before a file is merged in.
func Default() *Config {
	debounce := int(validation.DefaultDebounce / time.Millisecond)
	return &Config{
		Form: FormOptions{
			ValidateDebounceTime: &debounce,
		},
		Locale:   "en",
		LogLevel: "info",
	}
}

// Load loads the file named by EnvVar.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, ErrNoConfig
	}
	return LoadFile(path)
}

// LoadFile merges the file at path over Default and validates the result.
// The format follows the extension: .toml is TOML, anything else YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return nil
}

// resolvePaths makes relative file references relative to the config file.
func (c *Config) resolvePaths(base string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
	c.Lookups = resolve(c.Lookups)
	for idx, file := range c.LocaleFiles {
		c.LocaleFiles[idx] = resolve(file)
	}
}

// Validate reports invalid settings.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: invalid locale %q: %w", c.Locale, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Form.ValidateDebounceTime != nil && *c.Form.ValidateDebounceTime < 0 {
		return fmt.Errorf("config: validateDebounceTime must not be negative, got %d", *c.Form.ValidateDebounceTime)
	}
	return nil
}

// ValidationOptions converts the form options for the validator. extras is
// handed to computed attributes.
func (f FormOptions) ValidationOptions(extras map[string]any) validation.Options {
	opts := validation.Options{
		ValidateAsync:        f.ValidateAsync,
		ValidateAfterChanged: f.ValidateAfterChanged,
		Extras:               extras,
	}
	if f.ValidateDebounceTime != nil {
		d := time.Duration(*f.ValidateDebounceTime) * time.Millisecond
		opts.ValidateDebounceTime = &d
	}
	return opts
}
