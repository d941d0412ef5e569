// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/resumeparse"
)

// DefaultPort is the HTTP port used when neither the config file nor flags set one.
const DefaultPort = 8080

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or are provided via flags and environment.
type Config struct {
	// Resume parser webhook
	WebhookURL     string `json:"webhook_url,omitempty"`
	WebhookTimeout string `json:"webhook_timeout,omitempty"` // Go duration, e.g. "60s"

	// Normalizer limits
	EducationSlots  int    `json:"education_slots,omitempty"`
	ExperienceSlots int    `json:"experience_slots,omitempty"`
	ListMergePolicy string `json:"list_merge_policy,omitempty"` // retain-on-empty | replace

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Local SQLite file, used instead of PostgreSQL

	// Behavior
	Port    int  `json:"port,omitempty"`
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	opts := resumeparse.DefaultOptions()
	return Config{
		WebhookTimeout:  "60s",
		EducationSlots:  opts.EducationSlots,
		ExperienceSlots: opts.ExperienceSlots,
		ListMergePolicy: string(autofill.ListRetainOnEmpty),
		Port:            DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
// Zero values are accepted since MergeWithDefaults fills them.
func (c *Config) Validate() error {
	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'webhook_url' must be an absolute URL: %q", c.WebhookURL)
		}
	}

	if c.WebhookTimeout != "" {
		d, err := time.ParseDuration(c.WebhookTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'webhook_timeout': %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config error: 'webhook_timeout' must be non-negative")
		}
	}

	if c.EducationSlots < 0 {
		return fmt.Errorf("config error: 'education_slots' must be non-negative")
	}
	if c.ExperienceSlots < 0 || c.ExperienceSlots > len(resumeparse.ExperienceSlots) {
		return fmt.Errorf("config error: 'experience_slots' must be between 1 and %d", len(resumeparse.ExperienceSlots))
	}

	if c.ListMergePolicy != "" {
		if _, err := autofill.ParseListPolicy(c.ListMergePolicy); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}

	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.WebhookTimeout == "" {
		result.WebhookTimeout = defaults.WebhookTimeout
	}
	if result.ListMergePolicy == "" {
		result.ListMergePolicy = defaults.ListMergePolicy
	}
	if result.DatabaseURL == "" && result.SQLitePath == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.SQLitePath = defaults.SQLitePath
	}

	// Int fields: use default if zero
	if result.EducationSlots == 0 {
		result.EducationSlots = defaults.EducationSlots
	}
	if result.ExperienceSlots == 0 {
		result.ExperienceSlots = defaults.ExperienceSlots
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides connection settings from the environment.
// RESUME_WEBHOOK_URL and DATABASE_URL win over file values when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("RESUME_WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && c.SQLitePath == "" {
		c.DatabaseURL = v
	}
}

// Timeout returns the parsed webhook timeout. Empty means the webhook default.
func (c *Config) Timeout() (time.Duration, error) {
	if c.WebhookTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.WebhookTimeout)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid 'webhook_timeout': %w", err)
	}
	return d, nil
}

// NormalizerOptions returns the normalizer limits, falling back to defaults for unset values.
func (c *Config) NormalizerOptions() resumeparse.Options {
	opts := resumeparse.DefaultOptions()
	if c.EducationSlots > 0 {
		opts.EducationSlots = c.EducationSlots
	}
	if c.ExperienceSlots > 0 {
		opts.ExperienceSlots = c.ExperienceSlots
	}
	return opts
}

// ListPolicy returns the configured list merge policy.
func (c *Config) ListPolicy() (autofill.ListPolicy, error) {
	return autofill.ParseListPolicy(c.ListMergePolicy)
}
