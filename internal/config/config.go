// Package config loads the event board configuration from YAML with
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"innovation-events/internal/model"
)

// Roster sources.
const (
	SourceConfig    = "config"
	SourceEnv       = "env"
	SourceFile      = "file"
	SourceGCS       = "gcs"
	SourceFirestore = "firestore"
)

const (
	DefaultListen     = ":8080"
	DefaultAPIBase    = "https://www.eventbriteapi.com/v3"
	DefaultTimeout    = 10 * time.Second
	DefaultBudget     = 60 * time.Second
	DefaultConcurrent = 8
	DefaultCacheTTL   = 15 * time.Minute
	DefaultRefresh    = "*/30 * * * *"
	DefaultCollection = "organizers"
	DefaultRosterKey  = "organizers.json"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel       = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidRosterSource   = errors.New("roster.source must be one of: config, env, file, gcs, firestore")
	ErrMissingRosterPath     = errors.New("roster.path is required for the file source")
	ErrMissingRosterBucket   = errors.New("roster.bucket is required for the gcs source")
	ErrMissingRosterProject  = errors.New("roster.project_id is required for the firestore source")
	ErrInvalidTimeout        = errors.New("eventbrite.timeout must be positive")
	ErrInvalidMaxConcurrency = errors.New("aggregation.max_concurrency must be non-negative")
	ErrInvalidBudget         = errors.New("aggregation.budget must be non-negative")
	ErrInvalidRefresh        = errors.New("refresh must be a standard cron expression")
	ErrInvalidOrganizersEnv  = errors.New("DEFAULT_ORGANIZERS must be a JSON array of {id, name}")
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	// Refresh is a cron schedule for background reloads. "off" disables them.
	Refresh string `yaml:"refresh"`
	// CacheTTL is how long a loaded collection is served before reloading.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	Eventbrite  EventbriteConfig  `yaml:"eventbrite"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Preview     PreviewConfig     `yaml:"preview"`
	Roster      RosterConfig      `yaml:"roster"`

	// Organizers is the roster used by the config source.
	Organizers model.Roster `yaml:"organizers"`
}

// EventbriteConfig holds API access settings.
type EventbriteConfig struct {
	APIBase string        `yaml:"api_base"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// AggregationConfig bounds the per-load fan-out. Zero values take the defaults.
type AggregationConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency"`
	Budget         time.Duration `yaml:"budget"`
}

// PreviewConfig controls the headless-browser screenshot of the board.
type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
}

// RosterConfig selects where the organizer roster is read from.
type RosterConfig struct {
	Source     string `yaml:"source"`
	Path       string `yaml:"path"`
	Bucket     string `yaml:"bucket"`
	Object     string `yaml:"object"`
	ProjectID  string `yaml:"project_id"`
	Collection string `yaml:"collection"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Load reads the YAML file at path. An empty path yields the defaults.
// Environment overrides are applied and the result normalized, not validated.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("EVENTBRITE_TOKEN"); v != "" {
		c.Eventbrite.Token = v
	}
	if v := getenv("EVENTBRITE_API_BASE"); v != "" {
		c.Eventbrite.APIBase = v
	}
	if v := getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("GCS_BUCKET"); v != "" {
		c.Roster.Bucket = v
	}
	if v := getenv("GCP_PROJECT_ID"); v != "" {
		c.Roster.ProjectID = v
	}
	if v := getenv("FIRESTORE_COLLECTION"); v != "" {
		c.Roster.Collection = v
	}
	if v := getenv("ROSTER_SOURCE"); v != "" {
		c.Roster.Source = v
	}
	if v := getenv("MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENCY: %w", err)
		}
		c.Aggregation.MaxConcurrency = n
	}
	return nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Refresh == "" {
		c.Refresh = DefaultRefresh
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Eventbrite.APIBase == "" {
		c.Eventbrite.APIBase = DefaultAPIBase
	}
	c.Eventbrite.APIBase = strings.TrimRight(c.Eventbrite.APIBase, "/")
	if c.Eventbrite.Timeout == 0 {
		c.Eventbrite.Timeout = DefaultTimeout
	}
	if c.Aggregation.MaxConcurrency == 0 {
		c.Aggregation.MaxConcurrency = DefaultConcurrent
	}
	if c.Aggregation.Budget == 0 {
		c.Aggregation.Budget = DefaultBudget
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = 1280
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = 900
	}
	if c.Roster.Source == "" {
		c.Roster.Source = SourceConfig
	}
	if c.Roster.Object == "" {
		c.Roster.Object = DefaultRosterKey
	}
	if c.Roster.Collection == "" {
		c.Roster.Collection = DefaultCollection
	}
	for i := range c.Organizers {
		c.Organizers[i].ID = strings.TrimSpace(c.Organizers[i].ID)
	}
}

// RefreshEnabled reports whether background reloads are scheduled.
func (c *Config) RefreshEnabled() bool {
	return c.Refresh != "off"
}

// Validate checks the configuration. The config roster is validated only
// when it is the selected source.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.Eventbrite.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Aggregation.MaxConcurrency < 0 {
		return ErrInvalidMaxConcurrency
	}
	if c.Aggregation.Budget < 0 {
		return ErrInvalidBudget
	}
	if c.RefreshEnabled() {
		if _, err := cron.ParseStandard(c.Refresh); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRefresh, err)
		}
	}

	switch c.Roster.Source {
	case SourceConfig:
		if err := c.Organizers.Validate(); err != nil {
			return fmt.Errorf("organizers: %w", err)
		}
	case SourceEnv:
	case SourceFile:
		if c.Roster.Path == "" {
			return ErrMissingRosterPath
		}
	case SourceGCS:
		if c.Roster.Bucket == "" {
			return ErrMissingRosterBucket
		}
	case SourceFirestore:
		if c.Roster.ProjectID == "" {
			return ErrMissingRosterProject
		}
	default:
		return ErrInvalidRosterSource
	}
	return nil
}

// ParseOrganizersEnv decodes the DEFAULT_ORGANIZERS value. An empty value is
// an empty roster.
func ParseOrganizersEnv(v string) (model.Roster, error) {
	if strings.TrimSpace(v) == "" {
		return model.Roster{}, nil
	}
	var r model.Roster
	if err := json.Unmarshal([]byte(v), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrganizersEnv, err)
	}
	return r, nil
}
