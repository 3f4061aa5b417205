// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "advisory.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:9090"

database:
  driver: "sqlite"
  path: "./test.db"

auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
  token_ttl: "30m"
  token_header: "X-Auth-Token"
  bcrypt_cost: 8
  owner_cancel: false

logging:
  level: "debug"
  format: "json"

webadmin:
  enabled: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "./test.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.TokenHeader != "X-Auth-Token" {
		t.Errorf("TokenHeader = %q", cfg.Auth.TokenHeader)
	}
	if cfg.Auth.BcryptCost != 8 {
		t.Errorf("BcryptCost = %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.OwnerCancelEnabled() {
		t.Error("OwnerCancelEnabled() = true, want false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.WebAdmin.Enabled {
		t.Error("WebAdmin.Enabled = false")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.TokenHeader != "Authorization" {
		t.Errorf("TokenHeader = %q, want Authorization", cfg.Auth.TokenHeader)
	}
	if !cfg.Auth.OwnerCancelEnabled() {
		t.Error("OwnerCancelEnabled() = false, want true by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_ADVISORY_SECRET", "an-env-injected-secret-32-bytes!")

	configPath := writeConfig(t, `
auth:
  jwt_secret: "${TEST_ADVISORY_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "an-env-injected-secret-32-bytes!" {
		t.Errorf("JWTSecret = %q, env var was not expanded", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should fail without jwt_secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error = %v, want mention of jwt_secret", err)
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	configPath := writeConfig(t, `
auth:
  jwt_secret: "too-short"
`)

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("Load() error = %v, want short-secret validation failure", err)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	configPath := writeConfig(t, `
database:
  driver: "mongodb"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`)

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "driver") {
		t.Errorf("Load() error = %v, want driver validation failure", err)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	configPath := writeConfig(t, `
database:
  driver: "postgres"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`)

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "dsn") {
		t.Errorf("Load() error = %v, want dsn validation failure", err)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	configPath := writeConfig(t, `
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
  token_ttl: "one hour"
`)

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "token_ttl") {
		t.Errorf("Load() error = %v, want duration parse failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}
