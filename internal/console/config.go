package console

import (
	"fmt"
	"os"
	"time"
)

// Config controls credential resolution and background work timing.
type Config struct {
	CredentialOverride string `toml:"credential_override"`
	DefaultCredential  string `toml:"default_credential"`
	DebounceDelay      string `toml:"debounce_delay"`
	GenerateTimeout    string `toml:"generate_timeout"`
	SyncTimeout        string `toml:"sync_timeout"`
}

// Env maps environment variable names for console configuration.
type Env struct {
	CredentialOverride string
	DefaultCredential  string
	DebounceDelay      string
	GenerateTimeout    string
	SyncTimeout        string
}

// DebounceDelayDuration parses and returns the snapshot write debounce.
func (c *Config) DebounceDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.DebounceDelay)
	return d
}

// GenerateTimeoutDuration parses and returns the per-request provider timeout.
func (c *Config) GenerateTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.GenerateTimeout)
	return d
}

// SyncTimeoutDuration parses and returns the remote sync timeout.
func (c *Config) SyncTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.SyncTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the console configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.CredentialOverride != "" {
		c.CredentialOverride = overlay.CredentialOverride
	}
	if overlay.DefaultCredential != "" {
		c.DefaultCredential = overlay.DefaultCredential
	}
	if overlay.DebounceDelay != "" {
		c.DebounceDelay = overlay.DebounceDelay
	}
	if overlay.GenerateTimeout != "" {
		c.GenerateTimeout = overlay.GenerateTimeout
	}
	if overlay.SyncTimeout != "" {
		c.SyncTimeout = overlay.SyncTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.DebounceDelay == "" {
		c.DebounceDelay = "1s"
	}
	if c.GenerateTimeout == "" {
		c.GenerateTimeout = "5m"
	}
	if c.SyncTimeout == "" {
		c.SyncTimeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(env.CredentialOverride, &c.CredentialOverride)
	set(env.DefaultCredential, &c.DefaultCredential)
	set(env.DebounceDelay, &c.DebounceDelay)
	set(env.GenerateTimeout, &c.GenerateTimeout)
	set(env.SyncTimeout, &c.SyncTimeout)
}

func (c *Config) validate() error {
	for name, v := range map[string]string{
		"debounce_delay":   c.DebounceDelay,
		"generate_timeout": c.GenerateTimeout,
		"sync_timeout":     c.SyncTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
