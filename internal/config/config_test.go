package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innovation-events/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

const validYAML = `
listen: ":9000"
log_level: DEBUG
refresh: "*/15 * * * *"
cache_ttl: 5m
eventbrite:
  api_base: https://api.example.com/v3/
  token: secret
  timeout: 3s
aggregation:
  max_concurrency: 4
  budget: 20s
organizers:
  - id: " 16982059077 "
    name: ACENET
  - id: "3570959959"
    name: Volta
`

func TestLoadYAML(t *testing.T) {
	t.Setenv("EVENTBRITE_TOKEN", "")
	t.Setenv("PORT", "")

	c, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ":9000", c.Listen)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, "https://api.example.com/v3", c.Eventbrite.APIBase)
	assert.Equal(t, 3*time.Second, c.Eventbrite.Timeout)
	assert.Equal(t, 4, c.Aggregation.MaxConcurrency)
	assert.Equal(t, 20*time.Second, c.Aggregation.Budget)
	assert.Equal(t, SourceConfig, c.Roster.Source)
	assert.Equal(t, []string{"16982059077", "3570959959"}, c.Organizers.IDs())
}

func TestDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, DefaultAPIBase, c.Eventbrite.APIBase)
	assert.Equal(t, DefaultTimeout, c.Eventbrite.Timeout)
	assert.Equal(t, DefaultBudget, c.Aggregation.Budget)
	assert.Equal(t, DefaultConcurrent, c.Aggregation.MaxConcurrency)
	assert.Equal(t, DefaultCollection, c.Roster.Collection)
	assert.True(t, c.RefreshEnabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.ApplyEnv(env(map[string]string{
		"EVENTBRITE_TOKEN":     "tok",
		"EVENTBRITE_API_BASE":  "http://localhost:1234/v3",
		"PORT":                 "3000",
		"GCS_BUCKET":           "rosters",
		"GCP_PROJECT_ID":       "proj",
		"FIRESTORE_COLLECTION": "orgs",
		"ROSTER_SOURCE":        "gcs",
		"MAX_CONCURRENCY":      "2",
	})))
	c.Normalize()

	assert.Equal(t, "tok", c.Eventbrite.Token)
	assert.Equal(t, "http://localhost:1234/v3", c.Eventbrite.APIBase)
	assert.Equal(t, ":3000", c.Listen)
	assert.Equal(t, "rosters", c.Roster.Bucket)
	assert.Equal(t, "proj", c.Roster.ProjectID)
	assert.Equal(t, "orgs", c.Roster.Collection)
	assert.Equal(t, SourceGCS, c.Roster.Source)
	assert.Equal(t, 2, c.Aggregation.MaxConcurrency)
	assert.NoError(t, c.Validate())

	err := (&Config{}).ApplyEnv(env(map[string]string{"MAX_CONCURRENCY": "many"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
		{"negative timeout", func(c *Config) { c.Eventbrite.Timeout = -time.Second }, ErrInvalidTimeout},
		{"negative concurrency", func(c *Config) { c.Aggregation.MaxConcurrency = -1 }, ErrInvalidMaxConcurrency},
		{"negative budget", func(c *Config) { c.Aggregation.Budget = -time.Second }, ErrInvalidBudget},
		{"bad cron", func(c *Config) { c.Refresh = "every now and then" }, ErrInvalidRefresh},
		{"unknown source", func(c *Config) { c.Roster.Source = "s3" }, ErrInvalidRosterSource},
		{"file without path", func(c *Config) { c.Roster.Source = SourceFile }, ErrMissingRosterPath},
		{"gcs without bucket", func(c *Config) { c.Roster.Source = SourceGCS }, ErrMissingRosterBucket},
		{"firestore without project", func(c *Config) { c.Roster.Source = SourceFirestore }, ErrMissingRosterProject},
		{"duplicate organizers", func(c *Config) {
			c.Organizers = model.Roster{{ID: "1"}, {ID: "1"}}
		}, model.ErrDuplicateOrganizerID},
		{"blank organizer", func(c *Config) {
			c.Organizers = model.Roster{{ID: " ", Name: "Nobody"}}
		}, model.ErrEmptyOrganizerID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestRefreshOff(t *testing.T) {
	c := Default()
	c.Refresh = "off"
	assert.False(t, c.RefreshEnabled())
	assert.NoError(t, c.Validate())
}

func TestParseOrganizersEnv(t *testing.T) {
	r, err := ParseOrganizersEnv(`[{"id":"18504351047","name":"Mashup Lab"}]`)
	require.NoError(t, err)
	assert.Equal(t, model.Roster{{ID: "18504351047", Name: "Mashup Lab"}}, r)

	r, err = ParseOrganizersEnv("")
	require.NoError(t, err)
	assert.Empty(t, r)

	_, err = ParseOrganizersEnv("{not json")
	assert.ErrorIs(t, err, ErrInvalidOrganizersEnv)
}
