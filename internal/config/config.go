// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"snapcourier/cli/internal/xdg"
)

// Environment overrides, applied after the file is read.
const (
	EnvBackendURL = "SNAPCOURIER_BACKEND_URL"
	EnvLogLevel   = "SNAPCOURIER_LOG_LEVEL"
	EnvKeyring    = "SNAPCOURIER_KEYRING"
)

// DefaultBackendURL is used when neither the file nor the environment sets one.
const DefaultBackendURL = "http://localhost:8080"

// Config holds non-sensitive CLI settings.
type Config struct {
	BackendURL     string    `json:"backend_url"`
	Endpoints      Endpoints `json:"endpoints"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	LogLevel       string    `json:"log_level"`
	// Keyring selects the credential store backend: "auto", "file" or "memory".
	Keyring string `json:"keyring"`
}

// Endpoints contains REST API endpoint paths relative to BackendURL.
type Endpoints struct {
	Login        string `json:"login"`         // e.g., "/api/auth/login"
	RefreshToken string `json:"refresh_token"` // e.g., "/api/auth/refresh-token"
	UserInfo     string `json:"user_info"`     // e.g., "/api/auth/user-info"
	Version      string `json:"version"`       // e.g., "/api/version"
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		BackendURL:     DefaultBackendURL,
		Endpoints:      DefaultEndpoints(),
		TimeoutSeconds: 10,
		LogLevel:       "info",
		Keyring:        "auto",
	}
}

// DefaultEndpoints returns the backend's standard auth routes.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:        "/api/auth/login",
		RefreshToken: "/api/auth/refresh-token",
		UserInfo:     "/api/auth/user-info",
		Version:      "/api/version",
	}
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports configuration that cannot reach a backend.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return errors.New("backend_url is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("backend_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("backend_url: missing host")
	}
	switch c.Keyring {
	case "auto", "file", "memory":
	default:
		return fmt.Errorf("keyring: unknown backend %q", c.Keyring)
	}
	return nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p, filling unset fields with defaults and
// applying environment overrides.
func LoadFrom(p string) (Config, error) {
	c, err := readFile(p)
	if err != nil {
		return c, err
	}
	c.applyEnv()
	return c, nil
}

// readFile reads p without environment overrides.
func readFile(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	c.fillDefaults()
	return c, nil
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.BackendURL == "" {
		c.BackendURL = d.BackendURL
	}
	if c.Endpoints.Login == "" {
		c.Endpoints.Login = d.Endpoints.Login
	}
	if c.Endpoints.RefreshToken == "" {
		c.Endpoints.RefreshToken = d.Endpoints.RefreshToken
	}
	if c.Endpoints.UserInfo == "" {
		c.Endpoints.UserInfo = d.Endpoints.UserInfo
	}
	if c.Endpoints.Version == "" {
		c.Endpoints.Version = d.Endpoints.Version
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Keyring == "" {
		c.Keyring = d.Keyring
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		c.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeyring)); v != "" {
		c.Keyring = v
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
}

// saveTo writes configuration with 0600 permissions.
func saveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Keys lists the settings accepted by Set.
var Keys = []string{"backend_url", "log_level", "keyring", "timeout_seconds"}

// Set assigns one setting by its file key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend_url":
		c.BackendURL = strings.TrimRight(value, "/")
	case "log_level":
		c.LogLevel = value
	case "keyring":
		c.Keyring = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds: want a positive integer, got %q", value)
		}
		c.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// UpdateFile applies fn to the configuration stored at p, validates the
// result and writes it back. Environment overrides are not persisted.
func UpdateFile(p string, fn func(*Config) error) (Config, error) {
	c, err := readFile(p)
	if err != nil {
		return c, err
	}
	if err := fn(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, saveTo(p, c)
}
