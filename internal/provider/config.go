package provider

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

// Env maps environment variable names for provider configuration.
type Env struct {
	PromptModel       string
	MaxRetries        string
	BaseDelay         string
	Jitter            string
	RequestsPerMinute string
	ReferenceMaxSize  string
	ReferenceTimeout  string
	ReferenceCacheTTL string
}

// Config controls retry, throttling, and reference resolution.
type Config struct {
	PromptModel       string `toml:"prompt_model"`
	MaxRetries        int    `toml:"max_retries"`
	BaseDelay         string `toml:"base_delay"`
	Jitter            string `toml:"jitter"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	ReferenceMaxSize  string `toml:"reference_max_size"`
	ReferenceTimeout  string `toml:"reference_timeout"`
	ReferenceCacheTTL string `toml:"reference_cache_ttl"`

	referenceMaxBytes int64
}

func (c *Config) BaseDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.BaseDelay)
	return d
}

func (c *Config) JitterDuration() time.Duration {
	d, _ := time.ParseDuration(c.Jitter)
	return d
}

func (c *Config) ReferenceTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReferenceTimeout)
	return d
}

func (c *Config) ReferenceCacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReferenceCacheTTL)
	return d
}

// ReferenceMaxBytes returns the parsed reference size cap. Valid after Finalize.
func (c *Config) ReferenceMaxBytes() int64 {
	return c.referenceMaxBytes
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.PromptModel != "" {
		c.PromptModel = overlay.PromptModel
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.BaseDelay != "" {
		c.BaseDelay = overlay.BaseDelay
	}
	if overlay.Jitter != "" {
		c.Jitter = overlay.Jitter
	}
	if overlay.RequestsPerMinute != 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.ReferenceMaxSize != "" {
		c.ReferenceMaxSize = overlay.ReferenceMaxSize
	}
	if overlay.ReferenceTimeout != "" {
		c.ReferenceTimeout = overlay.ReferenceTimeout
	}
	if overlay.ReferenceCacheTTL != "" {
		c.ReferenceCacheTTL = overlay.ReferenceCacheTTL
	}
}

func (c *Config) loadDefaults() {
	if c.PromptModel == "" {
		c.PromptModel = "gemini-2.0-flash"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay == "" {
		c.BaseDelay = "2s"
	}
	if c.Jitter == "" {
		c.Jitter = "1s"
	}
	if c.ReferenceMaxSize == "" {
		c.ReferenceMaxSize = "10MB"
	}
	if c.ReferenceTimeout == "" {
		c.ReferenceTimeout = "15s"
	}
	if c.ReferenceCacheTTL == "" {
		c.ReferenceCacheTTL = "30m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.PromptModel); v != "" {
		c.PromptModel = v
	}
	if v := os.Getenv(env.MaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(env.BaseDelay); v != "" {
		c.BaseDelay = v
	}
	if v := os.Getenv(env.Jitter); v != "" {
		c.Jitter = v
	}
	if v := os.Getenv(env.RequestsPerMinute); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestsPerMinute = n
		}
	}
	if v := os.Getenv(env.ReferenceMaxSize); v != "" {
		c.ReferenceMaxSize = v
	}
	if v := os.Getenv(env.ReferenceTimeout); v != "" {
		c.ReferenceTimeout = v
	}
	if v := os.Getenv(env.ReferenceCacheTTL); v != "" {
		c.ReferenceCacheTTL = v
	}
}

func (c *Config) validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}
	for name, v := range map[string]string{
		"base_delay":          c.BaseDelay,
		"jitter":              c.Jitter,
		"reference_timeout":   c.ReferenceTimeout,
		"reference_cache_ttl": c.ReferenceCacheTTL,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	size, err := units.FromHumanSize(c.ReferenceMaxSize)
	if err != nil {
		return fmt.Errorf("invalid reference_max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("reference_max_size must be positive")
	}
	c.referenceMaxBytes = size

	return nil
}
