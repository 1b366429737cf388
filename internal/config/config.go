// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/jeranaias/bestfriend-tui/internal/util"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BESTFRIEND_"
	// EnvHome overrides the configuration directory.
	EnvHome = EnvPrefix + "HOME"

	// FileName is the name of the config file inside ConfigDir.
	FileName = "config.toml"
	// LogFileName is the default log file name inside ConfigDir.
	LogFileName = "bestfriend.log"
	// DotEnvFile is read from the working directory on load.
	DotEnvFile = ".env"

	dirName = ".bestfriend"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete bestfriend configuration.
type Config struct {
	API     APIConfig     `toml:"api" envPrefix:"API_"`
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`
	UI      UIConfig      `toml:"ui" envPrefix:"UI_"`
	Logging LoggingConfig `toml:"logging" envPrefix:"LOG_"`
}

// APIConfig controls how the completion API is reached. The model and its
// sampling parameters are fixed and deliberately absent here.
type APIConfig struct {
	// BaseURL is the root of the OpenAI-compatible API.
	BaseURL string `toml:"base_url" env:"BASE_URL" validate:"required,url"`
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT" validate:"gte=0s"`
	// RequestsPerMinute paces outgoing requests. Zero means unlimited.
	RequestsPerMinute int `toml:"requests_per_minute" env:"REQUESTS_PER_MINUTE" validate:"gte=0,lte=600"`
}

// StorageConfig selects where the API key is kept.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" env:"BACKEND" validate:"oneof=file sqlite"`
	// Path overrides the backend's default location inside ConfigDir.
	Path string `toml:"path" env:"PATH"`
}

// UIConfig contains presentation settings. It is applied live on reload.
type UIConfig struct {
	// Markdown renders assistant replies as Markdown.
	Markdown bool `toml:"markdown" env:"MARKDOWN"`
	// ShowTimestamps shows the time under each message.
	ShowTimestamps bool `toml:"show_timestamps" env:"SHOW_TIMESTAMPS"`
	// TimestampFormat is a Go time layout.
	TimestampFormat string `toml:"timestamp_format" env:"TIMESTAMP_FORMAT" validate:"required"`
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" env:"THEME" validate:"oneof=auto dark light"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	// File is the log file path. Empty means ConfigDir/bestfriend.log.
	File string `toml:"file" env:"FILE"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.openai.com/v1",
			Timeout:           0,
			RequestsPerMinute: 0,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		UI: UIConfig{
			Markdown:        true,
			ShowTimestamps:  true,
			TimestampFormat: "15:04",
			Theme:           "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the bestfriend configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath returns the path to the config file.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LogFile returns the log file path, resolving the default.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// SlogLevel returns the configured level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load builds the effective configuration from defaults, the TOML file at
// path, .env and the environment, then validates it. An empty path means
// DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg. Unknown keys are logged
// and ignored.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil && !isWindows() {
		slog.Warn("could not ensure secure permissions on config file", "path", path, "error", err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ","))
	}
	return nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies BESTFRIEND_* environment variables to c.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}
	return nil
}

func isWindows() bool {
	return os.PathSeparator == '\\'
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes c to path as TOML with 0600 permissions. An empty path means
// DefaultPath.
func Save(c *Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# bestfriend configuration file")
	fmt.Fprintln(&buf, "# Environment variables (BESTFRIEND_*) override these values.")
	fmt.Fprintln(&buf, "")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.WriteFileAtomic(path, buf.Bytes(), 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String returns c encoded as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return buf.String()
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks every field and returns all problems as one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, fieldError(fe))
	}
	return result.ErrorOrNil()
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: must be set", field)
	case "url":
		return fmt.Errorf("%s: %q is not a valid URL", field, fe.Value())
	case "oneof":
		return fmt.Errorf("%s: %q must be one of [%s]", field, fe.Value(), fe.Param())
	case "gte":
		return fmt.Errorf("%s: must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Errorf("%s: must be at most %s", field, fe.Param())
	default:
		return fmt.Errorf("%s: failed %s validation", field, fe.Tag())
	}
}
