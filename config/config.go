package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/treasury/hedge"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is everything the desk needs at start up.
type Config struct {
	Routing  RoutingConfig  `json:"routing" yaml:"routing"`
	Rates    []market.Quote `json:"rates" yaml:"rates"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`

	// Actor is the user recorded on changes made from the command line.
	Actor string `json:"actor" yaml:"actor"`
}

// RoutingConfig seeds the routing store when no journal holds a
// configuration yet.
type RoutingConfig struct {
	Reference []market.Currency  `json:"reference" yaml:"reference"`
	Extra     []market.Currency  `json:"extra,omitempty" yaml:"extra,omitempty"`
	Overrides []routing.Override `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ApprovalConfig struct {
	// DualAuthThreshold is the USD hedge amount from which a second
	// approver is required.
	DualAuthThreshold float64 `json:"dual_auth_threshold" yaml:"dual_auth_threshold"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Routing.Reference) < 2 {
		return fmt.Errorf("routing.reference needs at least 2 currencies")
	}
	for _, ccy := range append(append([]market.Currency{}, c.Routing.Reference...), c.Routing.Extra...) {
		if err := ccy.Validate(); err != nil {
			return fmt.Errorf("routing: %w", err)
		}
	}
	for _, o := range c.Routing.Overrides {
		if _, err := market.NormalizePair(o.Base, o.Quote); err != nil {
			return fmt.Errorf("routing.overrides: %w", err)
		}
		if o.Base == o.Quote {
			return fmt.Errorf("routing.overrides: %s cannot route against itself", o.Base)
		}
		if _, err := routing.ParseMode(string(o.Mode)); err != nil {
			return fmt.Errorf("routing.overrides: %w", err)
		}
	}
	for _, q := range c.Rates {
		if _, err := market.ParsePair(q.Pair); err != nil {
			return fmt.Errorf("rates: %w", err)
		}
		if q.Bid <= 0 || q.Ask <= 0 {
			return fmt.Errorf("rates: %s bid and ask must be positive", q.Pair)
		}
		if q.Ask < q.Bid {
			return fmt.Errorf("rates: %s ask must not be below bid", q.Pair)
		}
	}
	if c.Journal.Type != "memory" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'memory' or 'sqlite'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if c.Approval.DualAuthThreshold <= 0 {
		return fmt.Errorf("approval.dual_auth_threshold must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	if strings.TrimSpace(c.Actor) == "" {
		return fmt.Errorf("actor is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Routing: RoutingConfig{
			Reference: append([]market.Currency(nil), market.G10...),
			Extra:     append([]market.Currency(nil), market.Regional...),
			Overrides: append([]routing.Override(nil), routing.DefaultOverrides...),
		},
		Rates: market.DefaultQuotes(),
		Journal: JournalConfig{
			Type: "memory",
		},
		Approval: ApprovalConfig{
			DualAuthThreshold: hedge.DefaultDualAuthThreshold,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Actor: "system",
	}
}

// DefaultRouting builds the initial routing configuration.
func (c *Config) DefaultRouting() (routing.Configuration, error) {
	return routing.DefaultConfiguration(c.Routing.Reference, c.Routing.Extra, c.Routing.Overrides)
}

// Environment overrides.
const (
	EnvAddr     = "TREASURY_ADDR"
	EnvDB       = "TREASURY_DB"
	EnvLogLevel = "TREASURY_LOG_LEVEL"
	EnvActor    = "TREASURY_ACTOR"
)

// LoadEnv reads .env style files into the process environment without
// overriding variables already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays the TREASURY_* variables found by lookup. Setting
// TREASURY_DB switches the journal to sqlite.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvActor); ok && v != "" {
		c.Actor = v
	}
}

// MapLookup adapts a map, such as the one godotenv.Read returns, to
// ApplyEnv.
func MapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}
