// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/system-info/internal/manifest"
	"github.com/jonathan/system-info/internal/probe"
)

// Environment variables that fill values not given on the command line.
const (
	EnvProbe    = "SYSTEM_INFO_PROBE"
	EnvManifest = "SYSTEM_INFO_MANIFEST"
	EnvTimeout  = "SYSTEM_INFO_TIMEOUT"
	EnvSchema   = "SYSTEM_INFO_SCHEMA"
	EnvURL      = "SYSTEM_INFO_URL"
	EnvToken    = "SYSTEM_INFO_TOKEN"
	EnvDeviceID = "SYSTEM_INFO_DEVICE_ID"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Collection
	Probe      string   `json:"probe,omitempty"`       // Probe executable, resolved via PATH
	ProbeArgs  []string `json:"probe_args,omitempty"`  // Arguments passed to the probe
	Manifest   string   `json:"manifest,omitempty"`    // Path to manifest file
	NoManifest bool     `json:"no_manifest,omitempty"` // Skip the manifest entirely
	Timeout    string   `json:"timeout,omitempty"`     // Probe timeout, e.g. "30s" or "30"

	// Output
	Schema string `json:"schema,omitempty"` // JSON Schema the document must satisfy
	Output string `json:"output,omitempty"` // Write to file instead of stdout

	// Upload
	URL      string `json:"url,omitempty" validate:"omitempty,url"`        // Endpoint the document is PUT to
	Token    string `json:"token,omitempty"`                               // Bearer token
	DeviceID string `json:"device_id,omitempty" validate:"omitempty,uuid"` // Device UUID sent with the upload

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the configuration used when nothing else is set:
// `lshw -json` merged with /etc/manifest.xml.
func Defaults() Config {
	cmd := probe.DefaultCommand()
	return Config{
		Probe:     cmd.Name,
		ProbeArgs: cmd.Args,
		Manifest:  manifest.DefaultPath,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from SYSTEM_INFO_* environment variables.
// SYSTEM_INFO_PROBE holds a whole command line, e.g. "lshw -json -sanitize".
func FromEnv() Config {
	var cfg Config

	if fields := strings.Fields(os.Getenv(EnvProbe)); len(fields) > 0 {
		cfg.Probe = fields[0]
		cfg.ProbeArgs = fields[1:]
	}
	cfg.Manifest = os.Getenv(EnvManifest)
	cfg.Timeout = os.Getenv(EnvTimeout)
	cfg.Schema = os.Getenv(EnvSchema)
	cfg.URL = os.Getenv(EnvURL)
	cfg.Token = os.Getenv(EnvToken)
	cfg.DeviceID = os.Getenv(EnvDeviceID)

	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' is not a valid %s: %v", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	timeout, err := c.ProbeTimeout()
	if err != nil {
		return err
	}
	if timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}

	if c.Schema != "" {
		if _, err := os.Stat(c.Schema); os.IsNotExist(err) {
			return fmt.Errorf("config error: schema file not found: %s", c.Schema)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Probe arguments are only inherited together with the probe they belong to.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Probe == "" {
		result.Probe = defaults.Probe
		if len(result.ProbeArgs) == 0 {
			result.ProbeArgs = defaults.ProbeArgs
		}
	}
	if result.Manifest == "" {
		result.Manifest = defaults.Manifest
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.Schema == "" {
		result.Schema = defaults.Schema
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.URL == "" {
		result.URL = defaults.URL
	}
	if result.Token == "" {
		result.Token = defaults.Token
	}
	if result.DeviceID == "" {
		result.DeviceID = defaults.DeviceID
	}

	// Bools can only be switched on by a lower layer
	result.NoManifest = result.NoManifest || defaults.NoManifest
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// ProbeCommand returns the probe invocation described by the config.
func (c *Config) ProbeCommand() (probe.Command, error) {
	timeout, err := c.ProbeTimeout()
	if err != nil {
		return probe.Command{}, err
	}
	return probe.Command{Name: c.Probe, Args: c.ProbeArgs, Timeout: timeout}, nil
}

// maxTimeoutSeconds is the largest whole-second timeout a time.Duration can hold.
const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// ProbeTimeout parses Timeout. Bare integers are taken as seconds.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseInt(c.Timeout, 10, 64); err == nil {
		if secs > maxTimeoutSeconds || secs < -maxTimeoutSeconds {
			return 0, fmt.Errorf("config error: timeout %q is out of range", c.Timeout)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// ManifestPath returns the manifest to read, or "" when disabled.
func (c *Config) ManifestPath() string {
	if c.NoManifest {
		return ""
	}
	return c.Manifest
}

