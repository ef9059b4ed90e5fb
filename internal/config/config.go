// Package config loads and stores CLI configuration in the XDG config dir.
// Settings come from config.yaml with SQLPILOT_* environment overrides.
// Connection URLs are never stored here; remembered URLs go to the OS keychain.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"sqlpilot/cli/internal/xdg"
)

// FileName is the config file name inside the config directory.
const FileName = "config.yaml"

// Mode names accepted by the mode setting.
const (
	ModeIDE    = "ide"
	ModeSimple = "simple"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// APIURL is the backend base URL including the /api/v1 prefix.
	APIURL   string        `yaml:"api_url,omitempty" env:"SQLPILOT_API_URL" env-default:"http://localhost:8000/api/v1"`
	Timeout  time.Duration `yaml:"timeout,omitempty" env:"SQLPILOT_TIMEOUT" env-default:"5s"`
	LogLevel string        `yaml:"log_level,omitempty" env:"SQLPILOT_LOG_LEVEL" env-default:"info"`
	// ExportDir defaults to the XDG data dir when empty.
	ExportDir string `yaml:"export_dir,omitempty" env:"SQLPILOT_EXPORT_DIR"`
	// Mode is the initial application mode of the shell.
	Mode string `yaml:"mode,omitempty" env:"SQLPILOT_MODE" env-default:"ide"`
}

// setters maps config keys to their parsers for `config set`.
var setters = map[string]func(c *Config, v string) error{
	"api_url":    func(c *Config, v string) error { c.APIURL = v; return nil },
	"log_level":  func(c *Config, v string) error { c.LogLevel = v; return nil },
	"export_dir": func(c *Config, v string) error { c.ExportDir = v; return nil },
	"mode":       func(c *Config, v string) error { c.Mode = strings.ToLower(v); return nil },
	"timeout": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
		return nil
	},
}

// Keys returns the settable config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the path to the config file.
func Path() (string, error) {
	return xdg.ConfigFile(FileName)
}

// Load reads configuration; missing file returns defaults with env overrides.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (Config, error) {
	var c Config
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&c); err != nil {
			return c, fmt.Errorf("read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &c); err != nil {
		return c, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Mode != ModeIDE && c.Mode != ModeSimple {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeIDE, ModeSimple, c.Mode)
	}
	return nil
}

// Set updates a single key in the config file, leaving other file values
// and environment overrides alone.
func Set(key, value string) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SetIn(p, key, value)
}

// SetIn is Set against an explicit path.
func SetIn(path, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	var c Config
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}
	if err := set(&c, value); err != nil {
		return err
	}
	if key == "mode" && c.Mode != ModeIDE && c.Mode != ModeSimple {
		return fmt.Errorf("mode must be %q or %q", ModeIDE, ModeSimple)
	}
	return SaveTo(path, c)
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to an explicit path with 0600 permissions.
func SaveTo(path string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
