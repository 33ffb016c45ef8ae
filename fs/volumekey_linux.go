// Package fs implements the Device Cache: it keeps Device Probe results
// fresh, coalesces same-volume lookups, and refreshes entries in the
// background as they approach expiry.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// deviceID resolves path's filesystem device number via stat(2), the same
// major:minor identity ios/probe_linux.go's classifyRotational resolves for
// rotational detection. Every path on the same mounted filesystem shares
// this identity, which is what lets the Device Cache coalesce many files
// in one directory into a single probe (§4.2).
func deviceID(path string) (string, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return "", false
	}
	major := unix.Major(uint64(st.Dev))
	minor := unix.Minor(uint64(st.Dev))
	return fmt.Sprintf("%d:%d", major, minor), true
}
