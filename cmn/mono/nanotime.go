//go:build !mono

// Package mono provides low-level monotonic time used for throughput/latency
// sampling and EWMA-style rate smoothing.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime returns a monotonic clock reading in nanoseconds. The "mono"
// build tag switches to a faster runtime.nanotime() linkname (see
// fast_nanotime.go); absent the tag this falls back to the portable
// time.Now().UnixNano(), a wall-clock reading (not monotonic), which is
// what every other package in this module links against by default.
func NanoTime() int64 { return time.Now().UnixNano() }
