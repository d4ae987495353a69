package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quant.yaml")

	cfg := Default()
	cfg.Account.Deposit = 250_000
	cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "runs.db"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quant.json")

	cfg := Default()
	cfg.Run.Samples = 50
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile(write("garbage.yaml", "{{{not a config"))
	assert.Error(t, err)

	// Parses but fails validation: no symbols.
	_, err = LoadFromFile(write("empty.yaml", "account:\n  currency: USD\n  deposit: 1000\n"))
	assert.Error(t, err)
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing currency", func(c *Config) { c.Account.Currency = "" }},
		{"zero deposit", func(c *Config) { c.Account.Deposit = 0 }},
		{"negative leverage", func(c *Config) { c.Account.Leverage = -1 }},
		{"no symbols", func(c *Config) { c.Feed.Symbols = nil }},
		{"zero events", func(c *Config) { c.Feed.Events = 0 }},
		{"bad interval", func(c *Config) { c.Feed.Interval = "soon" }},
		{"order pct too large", func(c *Config) { c.Run.OrderPct = 1.5 }},
		{"zero ema period", func(c *Config) { c.Run.Strategy.Fast = 0 }},
		{"validation out of range", func(c *Config) { c.Run.Validation = 1 }},
		{"bad window", func(c *Config) { c.Run.Window = "nope" }},
		{"csv without paths", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"sqlite without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
		{"unknown journal type", func(c *Config) { c.Journal = JournalConfig{Type: "kafka"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseDefaults(t *testing.T) {
	d, err := FeedConfig{}.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	w, err := RunConfig{}.ParseWindow()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, w)
}
