package config_test

import (
	"path/filepath"
	"testing"

	"github.com/fcopy-dev/fcopy/config"
)

func TestDefaultValidates(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != config.Default() {
		t.Fatal("expected default config for a missing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcopy.toml")
	cfg := config.Default()
	cfg.Performance.ThreadCount = 8
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Performance.ThreadCount != 8 {
		t.Fatalf("expected thread_count 8, got %d", got.Performance.ThreadCount)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := config.Default()
	cfg.Performance.ThreadCount = 1000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for thread_count out of range")
	}

	cfg = config.Default()
	cfg.Retry.BackoffMultiplier = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for backoff_multiplier <= 1.0")
	}

	cfg = config.Default()
	cfg.Network.MaxBytesPerSec = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for a negative network.max_bytes_per_sec")
	}
}
