// Package xcopy implements the Copy Driver: the per-file state machine
// that takes a source and destination path through open, device
// resolution, zero-copy dispatch (with streamed fallback), metadata
// preservation, and optional verification.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xcopy

import "time"

// ReadAheadStrategy names which per-class read-ahead window policy to
// apply; Auto lets the driver pick from the source's StorageClass.
type ReadAheadStrategy int

const (
	ReadAheadAuto ReadAheadStrategy = iota
	ReadAheadDisabled
)

// Options mirrors §3's CopyOptions.
type Options struct {
	PreserveMetadata bool
	Verify           bool
	AllowZeroCopy    bool
	AllowMappedIO    bool
	BufferOverride   int64 // 0 means unset
	ReadAhead        ReadAheadStrategy
	MaxRetries       uint32
	MaxNetworkBytesPerSec int64 // 0 means unthrottled; only applied when src or dst is ios.Network
	ProgressInterval time.Duration
	Overwrite        bool
	FollowSymlinks   bool
	CreateDirs       bool
	DiscardPartial   bool
	StrictMetadata   bool
	FailFast         bool
}

// DefaultOptions returns the documented defaults for CopyOptions.
func DefaultOptions() Options {
	return Options{
		PreserveMetadata: true,
		AllowZeroCopy:    true,
		AllowMappedIO:    true,
		ReadAhead:        ReadAheadAuto,
		MaxRetries:       3,
		ProgressInterval: 200 * time.Millisecond,
		CreateDirs:       true,
	}
}
