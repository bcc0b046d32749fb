package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "migrate.yaml"

// Config holds all configuration for the migrator.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, the target's elevated credential) must only come from environment variables.
type Config struct {
	Version string `yaml:"-"` // Set at load time, not from config

	Source SourceConfig `yaml:"source"`
	Target TargetConfig `yaml:"target"`
	Log    LogConfig    `yaml:"log"`
	Run    RunConfig    `yaml:"run"`
}

// SourceConfig describes the read-only document store.
type SourceConfig struct {
	// Driver selects the source adapter: "jsonfile" or "surrealdb".
	Driver string `yaml:"driver" env:"SOURCE_DRIVER" env-default:"jsonfile"`

	// Path is the export directory for the jsonfile driver (one file per collection).
	Path string `yaml:"path" env:"SOURCE_PATH" env-default:"./export"`

	// SurrealDB connection settings.
	URL       string `yaml:"url" env:"SOURCE_URL" env-default:"ws://localhost:8000"`
	Namespace string `yaml:"namespace" env:"SOURCE_NAMESPACE" env-default:"kula"`
	Database  string `yaml:"database" env:"SOURCE_DATABASE" env-default:"pos"`
	Username  string `yaml:"username" env:"SOURCE_USERNAME" env-default:"root"`
	Password  string `yaml:"-" env:"SOURCE_PASSWORD"` // Secret - not in YAML
}

// TargetConfig describes the relational store rows are upserted into.
type TargetConfig struct {
	// Driver selects the target adapter: "postgres", "sqlite" or "sqlserver".
	Driver string `yaml:"driver" env:"TARGET_DRIVER" env-default:"postgres"`

	// URL carries the elevated credential that bypasses row-level security.
	URL string `yaml:"-" env:"TARGET_DATABASE_URL"` // Secret - not in YAML

	// Role is assumed on every pooled Postgres connection. Empty keeps the login role.
	Role string `yaml:"role" env:"TARGET_ROLE" env-default:"service_role"`

	// IdentityTable holds the target's user identities (id, email); profiles
	// are keyed by the identity sharing their email.
	IdentityTable string `yaml:"identity_table" env:"TARGET_IDENTITY_TABLE" env-default:"auth.users"`

	MaxConnections int32 `yaml:"max_connections" env:"TARGET_MAX_CONNECTIONS" env-default:"4"`
}

// LogConfig controls process logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// RunConfig holds defaults for run behaviour; CLI flags override them.
type RunConfig struct {
	// Strict makes the process exit non-zero when any record errored.
	Strict bool `yaml:"strict" env:"MIGRATE_STRICT" env-default:"false"`
	// DryRun maps every document but writes nothing.
	DryRun bool `yaml:"dry_run" env:"MIGRATE_DRY_RUN" env-default:"false"`
}

var (
	validSourceDrivers = []string{"jsonfile", "surrealdb"}
	validTargetDrivers = []string{"postgres", "sqlite", "sqlserver"}
)

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: every setting can come from the environment.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// normalize lower-cases driver names and rewrites loopback hosts when running in Docker.
func (c *Config) normalize() {
	c.Source.Driver = strings.ToLower(strings.TrimSpace(c.Source.Driver))
	c.Target.Driver = strings.ToLower(strings.TrimSpace(c.Target.Driver))
	c.Source.URL = ResolveURLForDocker(c.Source.URL)
	if c.Target.Driver != "sqlite" {
		c.Target.URL = ResolveURLForDocker(c.Target.URL)
	}
}

// Validate checks that the selected drivers exist and their required settings are present.
func (c *Config) Validate() error {
	if !contains(validSourceDrivers, c.Source.Driver) {
		return fmt.Errorf("source.driver %q must be one of %v", c.Source.Driver, validSourceDrivers)
	}
	if !contains(validTargetDrivers, c.Target.Driver) {
		return fmt.Errorf("target.driver %q must be one of %v", c.Target.Driver, validTargetDrivers)
	}

	if c.Source.Driver == "jsonfile" && c.Source.Path == "" {
		return fmt.Errorf("source.path is required for the jsonfile driver")
	}
	if c.Source.Driver == "surrealdb" && (c.Source.URL == "" || c.Source.Namespace == "" || c.Source.Database == "") {
		return fmt.Errorf("source.url, source.namespace and source.database are required for the surrealdb driver")
	}

	// The reference index is always read from the target, even on a dry run.
	if c.Target.URL == "" {
		return fmt.Errorf("TARGET_DATABASE_URL must be set")
	}
	if c.Target.IdentityTable == "" {
		return fmt.Errorf("target.identity_table is required")
	}
	if c.Target.MaxConnections < 1 {
		return fmt.Errorf("target.max_connections must be at least 1")
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
