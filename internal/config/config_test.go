// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

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
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:3001"

database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"
  token_ttl: "1h"

delivery:
  mode: "http"
  timeout: "10s"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:3001" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:3001")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.Auth.TokenTTL, time.Hour)
	}
	if cfg.Delivery.Mode != "http" {
		t.Errorf("Delivery.Mode = %q, want %q", cfg.Delivery.Mode, "http")
	}
	if cfg.Delivery.Timeout != 10*time.Second {
		t.Errorf("Delivery.Timeout = %v, want %v", cfg.Delivery.Timeout, 10*time.Second)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v, want enabled at /metrics", cfg.Metrics)
	}
}

func TestLoad_DefaultTokenTTL(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:3001"
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.TokenTTL != DefaultTokenTTL {
		t.Errorf("TokenTTL = %v, want default %v", cfg.Auth.TokenTTL, DefaultTokenTTL)
	}
}

func TestLoad_DefaultDeliveryTimeout(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:3001"
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
delivery:
  mode: "http"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Delivery.Timeout != DefaultDeliveryTimeout {
		t.Errorf("Delivery.Timeout = %v, want default %v", cfg.Delivery.Timeout, DefaultDeliveryTimeout)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("HOOKRELAY_TEST_SECRET", "secret-from-env")

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:3001"
database:
  path: "./test.db"
auth:
  jwt_secret: "${HOOKRELAY_TEST_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:3001"
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
  token_ttl: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "token_ttl") {
		t.Fatalf("Load() error = %v, want token_ttl parse error", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{HTTPAddr: "localhost:3001"},
			Database: DatabaseConfig{Path: "./test.db"},
			Auth:     AuthConfig{JWTSecret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing http_addr", func(c *Config) { c.Server.HTTPAddr = "" }, "http_addr"},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"bad delivery mode", func(c *Config) { c.Delivery.Mode = "carrier-pigeon" }, "delivery.mode"},
		{"metrics without path", func(c *Config) { c.Metrics.Enabled = true }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
