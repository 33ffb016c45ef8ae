// Package config loads and validates the §6 configuration surface:
// performance, cache, and retry settings recognized by the core. It owns
// the schema, reading and writing the TOML file, and validation; mapping
// CLI flags onto it is a collaborator's job (see cmd/fcopy).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

// Config is the root of fcopy.toml.
type Config struct {
	Performance Performance `toml:"performance"`
	Cache       Cache       `toml:"cache"`
	Retry       Retry       `toml:"retry"`
	Network     Network     `toml:"network"`
}

type Performance struct {
	BufferSize       int64 `toml:"buffer_size"`
	ThreadCount      int   `toml:"thread_count"`
	EnableZeroCopy   bool  `toml:"enable_zero_copy"`
	EnableReadAhead  bool  `toml:"enable_read_ahead"`
}

type Cache struct {
	TTL                     time.Duration `toml:"ttl"`
	MaxEntries              int           `toml:"max_entries"`
	EnableBackgroundRefresh bool          `toml:"enable_background_refresh"`
	RefreshThreshold        float64       `toml:"refresh_threshold"`
}

type Retry struct {
	MaxRetries       int           `toml:"max_retries"`
	InitialDelay     time.Duration `toml:"initial_delay"`
	MaxDelay         time.Duration `toml:"max_delay"`
	BackoffMultiplier float64      `toml:"backoff_multiplier"`
}

// Network bounds transfer rate for Network-class devices (§4.7's
// connection-limit capping has a counterpart on bytes/sec, not just
// worker count). Zero means unthrottled.
type Network struct {
	MaxBytesPerSec int64 `toml:"max_bytes_per_sec"`
}

// Default returns the configuration surface's documented defaults.
func Default() Config {
	return Config{
		Performance: Performance{
			BufferSize:      256 * 1024,
			ThreadCount:      16,
			EnableZeroCopy:   true,
			EnableReadAhead:  true,
		},
		Cache: Cache{
			TTL:                     5 * time.Minute,
			MaxEntries:              1024,
			EnableBackgroundRefresh: true,
			RefreshThreshold:        0.8,
		},
		Retry: Retry{
			MaxRetries:        3,
			InitialDelay:      100 * time.Millisecond,
			MaxDelay:          10 * time.Second,
			BackoffMultiplier: 2.0,
		},
	}
}

// Load reads and validates a TOML config file at path, falling back to
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, xerr.Wrap(xerr.Other, path, err, "read config file")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, xerr.Wrap(xerr.InvalidPath, path, err, "parse config toml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save serializes cfg back to a TOML file at path.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return xerr.Wrap(xerr.Other, path, err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerr.Wrap(xerr.Other, path, err, "write config file")
	}
	return nil
}

// Validate enforces §6's recognized bounds on buffer size, thread count,
// refresh threshold, retry backoff/delays and the network rate limit.
// cache.ttl, cache.max_entries and retry.max_retries are not checked.
func (c Config) Validate() error {
	if c.Performance.BufferSize < 4*1024 || c.Performance.BufferSize > 64*1024*1024 {
		return fmt.Errorf("performance.buffer_size must be in [4KiB, 64MiB], got %d", c.Performance.BufferSize)
	}
	if c.Performance.BufferSize&(c.Performance.BufferSize-1) != 0 {
		return fmt.Errorf("performance.buffer_size must be a power of two, got %d", c.Performance.BufferSize)
	}
	if c.Performance.ThreadCount < 1 || c.Performance.ThreadCount > 256 {
		return fmt.Errorf("performance.thread_count must be in [1, 256], got %d", c.Performance.ThreadCount)
	}
	if c.Cache.RefreshThreshold <= 0 || c.Cache.RefreshThreshold >= 1 {
		return fmt.Errorf("cache.refresh_threshold must be in (0, 1), got %f", c.Cache.RefreshThreshold)
	}
	if c.Retry.BackoffMultiplier <= 1.0 {
		return fmt.Errorf("retry.backoff_multiplier must be > 1.0, got %f", c.Retry.BackoffMultiplier)
	}
	if c.Retry.InitialDelay > c.Retry.MaxDelay {
		return fmt.Errorf("retry.initial_delay (%v) must be <= retry.max_delay (%v)", c.Retry.InitialDelay, c.Retry.MaxDelay)
	}
	if c.Network.MaxBytesPerSec < 0 {
		return fmt.Errorf("network.max_bytes_per_sec must be >= 0 (0 = unthrottled), got %d", c.Network.MaxBytesPerSec)
	}
	return nil
}
