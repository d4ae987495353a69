package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a complete simulation run configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Sim     SimConfig     `json:"sim" yaml:"sim"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Run     RunConfig     `json:"run" yaml:"run"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Deposit  float64 `json:"deposit" yaml:"deposit"`
	Leverage float64 `json:"leverage,omitempty" yaml:"leverage,omitempty"` // 0 or 1 = cash account
}

// SimConfig contains execution-simulation parameters.
type SimConfig struct {
	SpreadBps   float64 `json:"spread_bps,omitempty" yaml:"spread_bps,omitempty"`
	FeeRate     float64 `json:"fee_rate,omitempty" yaml:"fee_rate,omitempty"`
	VolumeLimit float64 `json:"volume_limit,omitempty" yaml:"volume_limit,omitempty"`
}

// FeedConfig parameterizes the built-in random-walk data source.
type FeedConfig struct {
	Symbols    []string `json:"symbols" yaml:"symbols"`
	Events     int      `json:"events" yaml:"events"`
	Interval   string   `json:"interval,omitempty" yaml:"interval,omitempty"` // e.g. "1h"
	Seed       int64    `json:"seed,omitempty" yaml:"seed,omitempty"`
	StartPrice float64  `json:"start_price,omitempty" yaml:"start_price,omitempty"`
	Volatility float64  `json:"volatility,omitempty" yaml:"volatility,omitempty"`
}

// ParseInterval converts the interval string to a duration, defaulting to
// one hour.
func (f FeedConfig) ParseInterval() (time.Duration, error) {
	if f.Interval == "" {
		return time.Hour, nil
	}
	return time.ParseDuration(f.Interval)
}

// RunConfig contains orchestration parameters.
type RunConfig struct {
	Strategy   StrategyConfig `json:"strategy" yaml:"strategy"`
	OrderPct   float64        `json:"order_pct" yaml:"order_pct"`
	Windows    int            `json:"windows,omitempty" yaml:"windows,omitempty"`       // walk-forward windows
	Validation float64        `json:"validation,omitempty" yaml:"validation,omitempty"` // out-of-sample fraction
	Samples    int            `json:"samples,omitempty" yaml:"samples,omitempty"`       // monte carlo runs
	Window     string         `json:"window,omitempty" yaml:"window,omitempty"`         // monte carlo window, e.g. "168h"
	Seed       int64          `json:"run_seed,omitempty" yaml:"run_seed,omitempty"`
}

// ParseWindow converts the Monte Carlo window to a duration, defaulting to
// one week.
func (r RunConfig) ParseWindow() (time.Duration, error) {
	if r.Window == "" {
		return 7 * 24 * time.Hour, nil
	}
	return time.ParseDuration(r.Window)
}

// StrategyConfig contains EMA crossover parameters.
type StrategyConfig struct {
	Fast int `json:"fast" yaml:"fast"`
	Slow int `json:"slow" yaml:"slow"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FillsFile   string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile  string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Deposit <= 0 {
		return fmt.Errorf("account.deposit must be positive")
	}
	if c.Account.Leverage < 0 {
		return fmt.Errorf("account.leverage must not be negative")
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols is required")
	}
	if c.Feed.Events <= 0 {
		return fmt.Errorf("feed.events must be positive")
	}
	if _, err := c.Feed.ParseInterval(); err != nil {
		return fmt.Errorf("feed.interval: %w", err)
	}
	if c.Run.OrderPct <= 0 || c.Run.OrderPct > 1 {
		return fmt.Errorf("run.order_pct must be in (0, 1]")
	}
	if c.Run.Strategy.Fast <= 0 || c.Run.Strategy.Slow <= 0 {
		return fmt.Errorf("run.strategy periods must be positive")
	}
	if c.Run.Validation < 0 || c.Run.Validation >= 1 {
		return fmt.Errorf("run.validation must be in [0, 1)")
	}
	if _, err := c.Run.ParseWindow(); err != nil {
		return fmt.Errorf("run.window: %w", err)
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" || c.Journal.MetricsFile == "" {
			return fmt.Errorf("journal fills_file, equity_file and metrics_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Deposit:  100_000,
		},
		Sim: SimConfig{
			SpreadBps: 2,
		},
		Feed: FeedConfig{
			Symbols:    []string{"AAPL", "MSFT"},
			Events:     500,
			Interval:   "1h",
			Seed:       42,
			StartPrice: 100,
			Volatility: 0.01,
		},
		Run: RunConfig{
			Strategy: StrategyConfig{Fast: 12, Slow: 26},
			OrderPct: 0.05,
			Windows:  1,
			Samples:  10,
			Window:   "168h",
			Seed:     1,
		},
		Journal: JournalConfig{Type: "none"},
	}
}
