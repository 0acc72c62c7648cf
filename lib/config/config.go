// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Resolve.
const (
	EnvConfig    = "STDIN_FORCER_CONFIG"
	EnvLogLevel  = "STDIN_FORCER_LOG_LEVEL"
	EnvLogFormat = "STDIN_FORCER_LOG_FORMAT"
	EnvReport    = "STDIN_FORCER_REPORT"
)

// DefaultWriteBackoff is the pause between retries of a transiently
// rejected write to the child's input pipe.
const DefaultWriteBackoff = 100 * time.Microsecond

// Log formats accepted by LogConfig.Format.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{FormatAuto, FormatText, FormatJSON}
)

// Config is the complete stdin-forcer configuration.
type Config struct {
	// Log configures the diagnostic logger on standard error.
	Log LogConfig `yaml:"log" json:"log"`

	// Relay tunes the relay engine.
	Relay RelayConfig `yaml:"relay" json:"relay"`

	// Report configures the optional per-session report.
	Report ReportConfig `yaml:"report" json:"report"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text, or json.
	Format string `yaml:"format" json:"format"`
}

// RelayConfig tunes the relay engine.
type RelayConfig struct {
	// WriteBackoff is a Go duration string ("100us", "1ms"). Must be
	// positive.
	WriteBackoff string `yaml:"write_backoff" json:"write_backoff"`
}

// ReportConfig configures the session report.
type ReportConfig struct {
	// Path is where the CBOR session report is written after the
	// child exits. Empty disables reporting. ${HOME} and other
	// environment references are expanded.
	Path string `yaml:"path" json:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: FormatAuto,
		},
		Relay: RelayConfig{
			WriteBackoff: DefaultWriteBackoff.String(),
		},
	}
}

// Resolve builds the effective configuration: defaults, then the file
// at path (or $STDIN_FORCER_CONFIG when path is empty), then
// environment overrides. The result is validated.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.applyEnvironmentOverrides()
	cfg.Report.Path = os.ExpandEnv(cfg.Report.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from path on top of Default(). It does
// not apply environment overrides or validate.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".json", ".jsonc":
		err = cfg.decodeJSON(data)
	case ".yaml", ".yml":
		err = cfg.decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q for %s (want .yaml, .yml, .json, or .jsonc)", extension, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) decodeJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	if value := os.Getenv(EnvLogLevel); value != "" {
		c.Log.Level = value
	}
	if value := os.Getenv(EnvLogFormat); value != "" {
		c.Log.Format = value
	}
	if value := os.Getenv(EnvReport); value != "" {
		c.Report.Path = value
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	backoff, err := time.ParseDuration(c.Relay.WriteBackoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("relay.write_backoff: %w", err))
	} else if backoff <= 0 {
		errs = append(errs, fmt.Errorf("relay.write_backoff must be positive, got %s", backoff))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// WriteBackoff returns the parsed relay.write_backoff, or
// DefaultWriteBackoff if it does not parse. Call Validate first.
func (c *Config) WriteBackoff() time.Duration {
	backoff, err := time.ParseDuration(c.Relay.WriteBackoff)
	if err != nil || backoff <= 0 {
		return DefaultWriteBackoff
	}
	return backoff
}

// LogLevel returns the slog level for log.level. Unknown values map to
// warn.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
