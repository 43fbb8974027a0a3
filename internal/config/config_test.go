package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	// No explicit path: Load falls back to its search paths, finds nothing
	// in the test's working directory, and serves pure defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network != "main" {
		t.Errorf("Network = %q, want %q", cfg.Network, "main")
	}
	if cfg.Mining.Backend != "cpu" {
		t.Errorf("Mining.Backend = %q, want %q", cfg.Mining.Backend, "cpu")
	}
	if cfg.Mining.RangeSize != 1000000 {
		t.Errorf("Mining.RangeSize = %d, want 1000000", cfg.Mining.RangeSize)
	}
	if !cfg.Backends.Simple || !cfg.Backends.CPU {
		t.Error("simple and cpu backends should be enabled by default")
	}
	if cfg.Backends.GPU {
		t.Error("gpu backend should be disabled by default")
	}
	if cfg.API.Bind != "0.0.0.0:8080" {
		t.Errorf("API.Bind = %q, want %q", cfg.API.Bind, "0.0.0.0:8080")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := []byte(`
network: testnet
mining:
  backend: simple
  range_size: 5000
farm:
  enabled: true
  redis_url: "127.0.0.1:6399"
`)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.Mining.Backend != "simple" {
		t.Errorf("Mining.Backend = %q, want %q", cfg.Mining.Backend, "simple")
	}
	if cfg.Mining.RangeSize != 5000 {
		t.Errorf("Mining.RangeSize = %d, want 5000", cfg.Mining.RangeSize)
	}
	if !cfg.Farm.Enabled {
		t.Error("Farm.Enabled should be true")
	}
}

func TestValidateRejectsEmptyBackend(t *testing.T) {
	cfg := &Config{Mining: MiningConfig{Backend: "", RangeSize: 100}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty backend")
	}
}

func TestValidateRejectsZeroRangeSize(t *testing.T) {
	cfg := &Config{Mining: MiningConfig{Backend: "cpu", RangeSize: 0}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero range_size")
	}
}

func TestValidateRequiresRedisURLWhenFarmEnabled(t *testing.T) {
	cfg := &Config{
		Mining: MiningConfig{Backend: "cpu", RangeSize: 100},
		Farm:   FarmConfig{Enabled: true, RedisURL: ""},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for farm enabled without redis_url")
	}
}

func TestValidateRequiresLicenseKeyWhenTelemetryEnabled(t *testing.T) {
	cfg := &Config{
		Mining:    MiningConfig{Backend: "cpu", RangeSize: 100},
		Telemetry: TelemetryConfig{Enabled: true, LicenseKey: ""},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for telemetry enabled without license key")
	}
}
