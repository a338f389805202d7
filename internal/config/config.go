package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vvka-141/dbhandler/internal/retry"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// CredentialsConfig points at the credentials document and the profile to use.
type CredentialsConfig struct {
	Path    string `yaml:"path"`
	Profile string `yaml:"profile"`
}

// RetryConfig controls the attempt loop. Zero values mean defaults.
type RetryConfig struct {
	MaxTries     int    `yaml:"max_tries"`
	InitialDelay string `yaml:"initial_delay,omitempty"`
	MaxDelay     string `yaml:"max_delay,omitempty"`
	StopOnFatal  bool   `yaml:"stop_on_fatal"`
}

// ConnectionConfig controls connection replacement.
type ConnectionConfig struct {
	KeepStale bool `yaml:"keep_stale"`
}

type ProjectConfig struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Retry       RetryConfig       `yaml:"retry"`
	Connection  ConnectionConfig  `yaml:"connection"`
	Timezone    string            `yaml:"timezone"`
}

const ConfigFileName = "dbhandler.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates a config file.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, dbhandler.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Retry:    RetryConfig{MaxTries: dbhandler.DefaultMaxTries},
		Timezone: dbhandler.DefaultTimezone,
	}
}

// Validate checks value ranges and duration syntax.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if c.Retry.MaxTries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_tries must not be negative: %w", dbhandler.ErrInvalidConfig))
	}
	if _, err := c.Retry.Backoff(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EffectiveMaxTries returns MaxTries, or the default when unset.
func (r RetryConfig) EffectiveMaxTries() int {
	if r.MaxTries == 0 {
		return dbhandler.DefaultMaxTries
	}
	return r.MaxTries
}

// Backoff returns the configured delay strategy. With no delays configured it
// returns retry.NoBackoff. Setting only one of the delays uses the default for the other.
func (r RetryConfig) Backoff() (dbhandler.BackoffStrategy, error) {
	if r.InitialDelay == "" && r.MaxDelay == "" {
		return retry.NoBackoff{}, nil
	}

	initial, err := parseDelay("retry.initial_delay", r.InitialDelay, dbhandler.DefaultRetryInitialDelay)
	if err != nil {
		return nil, err
	}
	maxDelay, err := parseDelay("retry.max_delay", r.MaxDelay, dbhandler.DefaultRetryMaxDelay)
	if err != nil {
		return nil, err
	}
	if maxDelay < initial {
		return nil, fmt.Errorf("retry.max_delay %v is below retry.initial_delay %v: %w", maxDelay, initial, dbhandler.ErrInvalidConfig)
	}

	return retry.NewExponentialBackoff(initial, maxDelay), nil
}

func parseDelay(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", key, dbhandler.ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative: %w", key, dbhandler.ErrInvalidConfig)
	}
	return d, nil
}
