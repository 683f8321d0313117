package remote

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config controls the shared image store.
type Config struct {
	Enabled       bool   `toml:"enabled"`
	Folder        string `toml:"folder"`
	PublicBaseURL string `toml:"public_base_url"`
}

// Env maps environment variable names for remote store configuration.
type Env struct {
	Enabled       string
	Folder        string
	PublicBaseURL string
}

// Finalize applies defaults, loads environment overrides, and validates the remote configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
// An overlay can enable the store but not disable it.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Folder != "" {
		c.Folder = overlay.Folder
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
}

func (c *Config) loadDefaults() {
	if c.Folder == "" {
		c.Folder = "generated-images"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "/blobs"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
	if env.Folder != "" {
		if v := os.Getenv(env.Folder); v != "" {
			c.Folder = v
		}
	}
	if env.PublicBaseURL != "" {
		if v := os.Getenv(env.PublicBaseURL); v != "" {
			c.PublicBaseURL = v
		}
	}
}

func (c *Config) validate() error {
	c.Folder = strings.Trim(c.Folder, "/")
	if c.Folder == "" {
		return fmt.Errorf("folder required")
	}
	if strings.Contains(c.Folder, "..") {
		return fmt.Errorf("folder must not contain '..'")
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}
