// Package config loads server settings from an optional agrosim.yaml file,
// then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/persistence"
)

// DefaultPath is read when no path is given and the file exists.
const DefaultPath = "agrosim.yaml"

// Entropy modes.
const (
	EntropySeeded    = "seeded"
	EntropyCrypto    = "crypto"
	EntropyRandomOrg = "randomorg"
)

type Config struct {
	Addr        string         `yaml:"addr"`
	AdminKey    string         `yaml:"admin_key"`
	CatalogDir  string         `yaml:"catalog_dir"`
	SnapshotDir string         `yaml:"snapshot_dir"`
	ActionRate  int            `yaml:"action_rate"`
	Database    DatabaseConfig `yaml:"database"`
	Entropy     EntropyConfig  `yaml:"entropy"`
}

type DatabaseConfig struct {
	Dialect     string `yaml:"dialect"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// EntropyConfig selects the random source. With mode "seeded" and a zero
// seed every game is replayable from its own seed; a non-zero seed pins one
// shared source for the whole server.
type EntropyConfig struct {
	Mode      string `yaml:"mode"`
	Seed      int64  `yaml:"seed"`
	RandomOrg string `yaml:"random_org_api_key"`
}

func defaults() Config {
	return Config{
		Addr:        ":8080",
		SnapshotDir: "data/snapshots",
		ActionRate:  120,
		Database: DatabaseConfig{
			Dialect:    string(persistence.DialectSQLite),
			SQLitePath: "data/agrosim.db",
		},
		Entropy: EntropyConfig{Mode: EntropySeeded},
	}
}

// Load reads path (or DefaultPath when it exists) and applies env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "AGROSIM_ADDR")
	setString(&c.AdminKey, "AGROSIM_ADMIN_KEY")
	setString(&c.CatalogDir, "AGROSIM_CATALOG_DIR")
	setString(&c.SnapshotDir, "AGROSIM_SNAPSHOT_DIR")
	setString(&c.Database.Dialect, "DB_DIALECT")
	setString(&c.Database.SQLitePath, "DB_SQLITE_PATH")
	setString(&c.Database.PostgresDSN, "DATABASE_URL")
	setString(&c.Database.PostgresDSN, "DB_POSTGRES_DSN")
	setString(&c.Entropy.Mode, "AGROSIM_ENTROPY")
	setString(&c.Entropy.RandomOrg, "RANDOM_ORG_API_KEY")

	if v := strings.TrimSpace(os.Getenv("AGROSIM_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AGROSIM_SEED: %w", err)
		}
		c.Entropy.Seed = n
	}
	if v := strings.TrimSpace(os.Getenv("AGROSIM_ACTION_RATE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AGROSIM_ACTION_RATE: %w", err)
		}
		c.ActionRate = n
	}
	return nil
}

func (c *Config) normalize() {
	c.Database.Dialect = strings.ToLower(strings.TrimSpace(c.Database.Dialect))
	c.Entropy.Mode = strings.ToLower(strings.TrimSpace(c.Entropy.Mode))
	if c.Entropy.Mode == "" {
		c.Entropy.Mode = EntropySeeded
	}
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	switch persistence.Dialect(c.Database.Dialect) {
	case persistence.DialectSQLite:
	case persistence.DialectPostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("DB_DIALECT=postgres requires DB_POSTGRES_DSN or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unsupported DB_DIALECT %q", c.Database.Dialect)
	}
	switch c.Entropy.Mode {
	case EntropySeeded, EntropyCrypto:
	case EntropyRandomOrg:
		if c.Entropy.RandomOrg == "" {
			return errors.New("entropy mode randomorg requires RANDOM_ORG_API_KEY")
		}
	default:
		return fmt.Errorf("unknown entropy mode %q", c.Entropy.Mode)
	}
	if c.ActionRate <= 0 {
		return fmt.Errorf("action_rate must be positive, got %d", c.ActionRate)
	}
	return nil
}

// DatabaseOptions converts the database section for persistence.Open.
func (c Config) DatabaseOptions() persistence.Options {
	return persistence.Options{
		Dialect:     persistence.Dialect(c.Database.Dialect),
		SQLitePath:  c.Database.SQLitePath,
		PostgresDSN: c.Database.PostgresDSN,
	}
}

// Source builds the shared random source. A nil result leaves each game on
// its own seeded stream.
func (c Config) Source() entropy.Source {
	switch c.Entropy.Mode {
	case EntropyCrypto:
		return entropy.Crypto{}
	case EntropyRandomOrg:
		if rc := entropy.NewRandomOrg(c.Entropy.RandomOrg); rc.Enabled() {
			return rc
		}
		return entropy.Crypto{}
	}
	if c.Entropy.Seed != 0 {
		return entropy.NewSeeded(c.Entropy.Seed)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
