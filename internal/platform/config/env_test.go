package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"SCHOLARFLOW_TEST_PORT" envDefault:"123"`
	Timeout time.Duration `env:"SCHOLARFLOW_TEST_TIMEOUT" envDefault:"2s"`
	Scopes  []string      `env:"SCHOLARFLOW_TEST_SCOPES" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected default timeout 2s, got %s", cfg.Timeout)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SCHOLARFLOW_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromUsesExplicitEnvironment(t *testing.T) {
	var cfg envTestConfig
	err := ParseEnvFrom(&cfg, map[string]string{
		"SCHOLARFLOW_TEST_PORT":   "9000",
		"SCHOLARFLOW_TEST_SCOPES": "/authenticate,/read-limited",
	})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Port)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[1] != "/read-limited" {
		t.Fatalf("scopes = %v", cfg.Scopes)
	}
}

func TestParseEnvRejectsNilTarget(t *testing.T) {
	if err := ParseEnv(nil); err == nil {
		t.Fatal("expected nil target error")
	}
}
