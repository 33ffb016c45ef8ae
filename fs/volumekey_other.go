//go:build !linux

// Package fs implements the Device Cache: it keeps Device Probe results
// fresh, coalesces same-volume lookups, and refreshes entries in the
// background as they approach expiry.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fs

// deviceID has no portable stat(2) device-number field outside Linux's
// syscall.Stat_t; other platforms fall back to volumeKey's per-path key,
// same as sched's inode_other.go stub for cycle detection.
func deviceID(string) (string, bool) {
	return "", false
}
