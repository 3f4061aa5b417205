// ABOUTME: Configuration loading and parsing for the advisory server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete advisory server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	WebAdmin WebAdminConfig `yaml:"webadmin"`
}

// ServerConfig holds server address configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration. Driver selects the storage
// backend: "sqlite" uses Path, "postgres" uses DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig holds authentication and authorization configuration.
type AuthConfig struct {
	// JWTSecret signs issued tokens. Must be at least 32 bytes; inject it
	// via ${ENV_VAR} expansion rather than committing it to the file.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenHeader is the request header carrying the token. Defaults to
	// "Authorization"; deployments behind proxies use "X-Auth-Token".
	TokenHeader string `yaml:"token_header"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `yaml:"bcrypt_cost"`

	// OwnerCancel permits request owners to cancel their own pending
	// requests without the advisor role.
	OwnerCancel *bool `yaml:"owner_cancel"`

	TokenTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenTTLRaw string `yaml:"token_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WebAdminConfig holds web admin dashboard configuration.
type WebAdminConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OwnerCancelEnabled resolves the owner_cancel knob, defaulting to true
// when unset.
func (a AuthConfig) OwnerCancelEnabled() bool {
	if a.OwnerCancel == nil {
		return true
	}
	return *a.OwnerCancel
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded, and
// duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Auth.TokenTTLRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(cfg.Auth.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	cfg.Auth.TokenTTL = d
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/advisory.db"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = time.Hour
	}
	if c.Auth.TokenHeader == "" {
		c.Auth.TokenHeader = "Authorization"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	return nil
}
