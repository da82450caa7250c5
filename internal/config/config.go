package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgerline/ccimport/internal/accounts"
)

// FileName is the default config file name.
const FileName = "ccimport.yaml"

// EnvDSN overrides store.dsn when set.
const EnvDSN = "CCIMPORT_DSN"

// Store drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Config represents the top-level ccimport.yaml configuration.
type Config struct {
	Import ImportConfig `yaml:"import"`
	Store  StoreConfig  `yaml:"store"`
	Rules  []RuleConfig `yaml:"rules,omitempty"`
	Log    LogConfig    `yaml:"log"`
	Git    GitConfig    `yaml:"git"`

	baseDir string
}

// ImportConfig controls where exports are discovered.
type ImportConfig struct {
	Dir           string `yaml:"dir"`
	Suffix        string `yaml:"suffix"`
	MoveProcessed bool   `yaml:"move_processed"`
}

// StoreConfig selects the persistent store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir,omitempty"` // csv driver
	DSN    string `yaml:"dsn,omitempty"` // postgres driver
}

// RuleConfig is one account resolution rule. Exactly one of Account and
// Exclude is set.
type RuleConfig struct {
	Pattern string `yaml:"pattern"`
	Account string `yaml:"account,omitempty"`
	Exclude bool   `yaml:"exclude,omitempty"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`
	RunLog string `yaml:"run_log"`
}

// GitConfig controls committing a csv store directory to git.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads and validates a ccimport.yaml file. Relative paths in the
// file are resolved against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.baseDir = filepath.Dir(abs)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for a new setup, with the built-in account
// rules written out so they can be edited.
func Default() *Config {
	builtin := accounts.DefaultRules()
	rules := make([]RuleConfig, len(builtin))
	for i, r := range builtin {
		if r.Excludes() {
			rules[i] = RuleConfig{Pattern: r.Pattern, Exclude: true}
		} else {
			rules[i] = RuleConfig{Pattern: r.Pattern, Account: r.Account}
		}
	}

	return &Config{
		Import: ImportConfig{
			Dir:    "~/downloads",
			Suffix: ".csv",
		},
		Store: StoreConfig{
			Driver: DriverCSV,
			Dir:    "store",
		},
		Rules: rules,
		Log: LogConfig{
			Level:  "info",
			RunLog: filepath.Join("logs", "import-log.csv"),
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "ccimport",
			AuthorEmail: "ccimport@localhost",
		},
	}
}

// Validate checks the store driver and that every rule compiles.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverCSV:
		if c.Store.Dir == "" {
			return errors.New("store.dir is required for the csv driver")
		}
	case DriverPostgres:
		if c.DSN() == "" {
			return fmt.Errorf("store.dsn or %s is required for the postgres driver", EnvDSN)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	_, err := c.Resolver()
	return err
}

// Resolver builds the account resolver from the configured rules, or the
// built-in rules when none are configured.
func (c *Config) Resolver() (*accounts.Resolver, error) {
	if len(c.Rules) == 0 {
		return accounts.DefaultResolver(), nil
	}
	rules := make([]accounts.Rule, len(c.Rules))
	for i, rc := range c.Rules {
		var (
			r   accounts.Rule
			err error
		)
		switch {
		case rc.Exclude && rc.Account != "":
			return nil, fmt.Errorf("rule %d (%q): account and exclude are mutually exclusive", i+1, rc.Pattern)
		case rc.Exclude:
			r, err = accounts.ExcludeRule(rc.Pattern)
		default:
			r, err = accounts.NewRule(rc.Pattern, rc.Account)
		}
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules[i] = r
	}
	return accounts.NewResolver(rules)
}

// DSN returns the postgres DSN, preferring the environment.
func (c *Config) DSN() string {
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		return dsn
	}
	return c.Store.DSN
}

// ImportDir returns the resolved import directory.
func (c *Config) ImportDir() string { return c.path(c.Import.Dir) }

// StoreDir returns the resolved csv store directory.
func (c *Config) StoreDir() string { return c.path(c.Store.Dir) }

// RunLogPath returns the resolved run log path, or "" if disabled.
func (c *Config) RunLogPath() string {
	if c.Log.RunLog == "" {
		return ""
	}
	return c.path(c.Log.RunLog)
}

func (c *Config) path(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
