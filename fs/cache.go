// Package fs implements the Device Cache: it keeps Device Probe results
// fresh, coalesces same-volume lookups, and refreshes entries in the
// background as they approach expiry.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fcopy-dev/fcopy/hk"
	"github.com/fcopy-dev/fcopy/ios"
)

const (
	DefaultTTL              = 5 * time.Minute
	DefaultRefreshThreshold = 0.8
	DefaultMaxEntries       = 1024
	hkRefreshInterval       = 10 * time.Second
	hkRefreshBudget         = 32
)

// CacheStats mirrors §4.2's stats() contract.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Refreshes int64
	Size      int
}

type entry struct {
	key        string
	descriptor ios.DeviceDescriptor
	insertedAt time.Time
	expiresAt  time.Time
	hits       int64
	refreshing bool
}

func (e *entry) score(now time.Time) float64 {
	age := now.Sub(e.insertedAt).Seconds()
	return age - float64(e.hits)*30
}

// Cache is the Device Cache. Keyed by volume identity (the device number
// of the path's filesystem, see volumeKey), not by the full path requested, so many files under one directory
// cost a single probe.
type Cache struct {
	mu               sync.RWMutex
	entries          map[string]*entry
	ttl              time.Duration
	refreshThreshold float64
	maxEntries       int
	group            singleflight.Group
	hkName           string

	stats CacheStats

	refreshMu    sync.Mutex
	refreshQueue []refreshReq
}

// New constructs a Device Cache and registers its background refresh job
// with the given housekeeper. Pass "" to skip hk registration (tests).
func New(hkName string) *Cache {
	c := &Cache{
		entries:          make(map[string]*entry),
		ttl:              DefaultTTL,
		refreshThreshold: DefaultRefreshThreshold,
		maxEntries:       DefaultMaxEntries,
		hkName:           hkName + hk.NameSuffix,
	}
	if hkName != "" {
		hk.Reg(c.hkName, func() time.Duration {
			c.driveBackground()
			return hkRefreshInterval
		}, hkRefreshInterval)
	}
	return c
}

func (c *Cache) Close() {
	if c.hkName != "" {
		hk.Unreg(c.hkName)
	}
}

// Get resolves path to a DeviceDescriptor, probing on a cache miss and
// coalescing concurrent misses for the same volume into a single probe
// (the single-flight invariant, §4.2).
func (c *Cache) Get(path string) ios.DeviceDescriptor {
	key := volumeKey(path)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	now := time.Now()
	if ok && now.Before(e.expiresAt) {
		c.mu.Lock()
		e.hits++
		c.stats.Hits++
		needsRefresh := now.After(e.insertedAt.Add(time.Duration(float64(c.ttl) * c.refreshThreshold))) && !e.refreshing
		if needsRefresh {
			e.refreshing = true
		}
		c.mu.Unlock()
		if needsRefresh {
			c.enqueueRefresh(key, path)
		}
		return e.descriptor
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()

	v, _, _ := c.group.Do(key, func() (any, error) {
		d := ios.Probe(path)
		c.insert(key, d)
		return d, nil
	})
	return v.(ios.DeviceDescriptor)
}

func (c *Cache) insert(key string, d ios.DeviceDescriptor) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.descriptor = d
		e.insertedAt = now
		e.expiresAt = now.Add(c.ttl)
		e.refreshing = false
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = &entry{
		key:        key,
		descriptor: d,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
	}
}

// evictLocked drops the entry with the worst age/hits score. Entries mid
// refresh are never evicted. Caller holds c.mu.
func (c *Cache) evictLocked(now time.Time) {
	var worstKey string
	var worstScore float64
	found := false
	for k, e := range c.entries {
		if e.refreshing {
			continue
		}
		s := e.score(now)
		if !found || s > worstScore {
			worstScore = s
			worstKey = k
			found = true
		}
	}
	if found {
		delete(c.entries, worstKey)
	}
}

// Invalidate drops the cached entry for a volume, forcing the next Get to
// re-probe.
func (c *Cache) Invalidate(volume string) {
	key := volumeKey(volume)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

type refreshReq struct {
	key  string
	path string
}

func (c *Cache) enqueueRefresh(key, path string) {
	c.refreshMu.Lock()
	c.refreshQueue = append(c.refreshQueue, refreshReq{key: key, path: path})
	c.refreshMu.Unlock()
}

// driveBackground drains up to hkRefreshBudget pending refreshes, bounded
// per call so a long queue never starves foreground lookups (§4.2).
func (c *Cache) driveBackground() {
	c.refreshMu.Lock()
	n := len(c.refreshQueue)
	if n > hkRefreshBudget {
		n = hkRefreshBudget
	}
	batch := c.refreshQueue[:n]
	c.refreshQueue = c.refreshQueue[n:]
	c.refreshMu.Unlock()

	for _, r := range batch {
		d := ios.Probe(r.path)
		c.insert(r.key, d)
		c.mu.Lock()
		c.stats.Refreshes++
		c.mu.Unlock()
	}
}

// volumeKey resolves path to the identity used as a cache key: the
// filesystem's major:minor device number (stat(2)'s st_dev, the same
// identity ios/probe_linux.go's classifyRotational resolves), so every
// path under one mount shares a key and many files in one directory cost
// one probe (§4.2). Falls back to the cleaned absolute path when stat
// fails - e.g. a destination directory that hasn't been created yet -
// which degrades to per-path keying rather than failing the lookup.
func volumeKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	abs = filepath.Clean(abs)
	if id, ok := deviceID(abs); ok {
		return id
	}
	return abs
}
