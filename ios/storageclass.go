// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import "github.com/fcopy-dev/fcopy/cmn/cos"

// StorageClass tags the device behind a resolved path. Derived once per
// volume by the Device Probe and cached by the Device Cache.
type StorageClass int

const (
	Unknown StorageClass = iota
	Ssd
	Hdd
	Network
	RamDisk
)

func (c StorageClass) String() string {
	switch c {
	case Ssd:
		return "ssd"
	case Hdd:
		return "hdd"
	case Network:
		return "network"
	case RamDisk:
		return "ramdisk"
	default:
		return "unknown"
	}
}

// CapFlags is a bitset of zero-copy capabilities a volume reports.
type CapFlags uint8

const (
	Reflink CapFlags = 1 << iota
	SendFile
	FileRangeCopy
	MappedIO
	SparsePreserve
)

func (f CapFlags) Has(bit CapFlags) bool { return f&bit != 0 }

func (f CapFlags) String() string {
	names := []struct {
		bit CapFlags
		s   string
	}{
		{Reflink, "reflink"}, {SendFile, "sendfile"}, {FileRangeCopy, "filerange"},
		{MappedIO, "mmap"}, {SparsePreserve, "sparse"},
	}
	out := ""
	for _, n := range names {
		if f.Has(n.bit) {
			if out != "" {
				out += "|"
			}
			out += n.s
		}
	}
	if out == "" {
		return "-"
	}
	return out
}

// BufferBounds is the {min, default, max} triple for one StorageClass, per
// the adaptive-buffer sizing table.
type BufferBounds struct {
	Min, Default, Max int64
}

const (
	KiB = 1024
	MiB = 1024 * KiB
)

var classBufferBounds = map[StorageClass]BufferBounds{
	Ssd:     {Min: 64 * KiB, Default: 512 * KiB, Max: 16 * MiB},
	Hdd:     {Min: 4 * KiB, Default: 64 * KiB, Max: 1 * MiB},
	Network: {Min: 8 * KiB, Default: 128 * KiB, Max: 2 * MiB},
	RamDisk: {Min: 1 * MiB, Default: 8 * MiB, Max: 64 * MiB},
	Unknown: {Min: 8 * KiB, Default: 256 * KiB, Max: 4 * MiB},
}

func BufferBoundsFor(c StorageClass) BufferBounds { return classBufferBounds[c] }

// classReadAheadWindow is the per-class read-ahead window default (§4.4).
var classReadAheadWindow = map[StorageClass]int64{
	Ssd:     512 * KiB,
	Hdd:     256 * KiB,
	Network: 128 * KiB,
	RamDisk: 2 * MiB,
	Unknown: 128 * KiB,
}

func ReadAheadWindowFor(c StorageClass) int64 { return classReadAheadWindow[c] }

// DeviceDescriptor is the immutable result of a device probe.
type DeviceDescriptor struct {
	Class             StorageClass
	Filesystem        string
	FilesystemID      cos.FsID // statfs(2)'s f_fsid; zero value on platforms fsutils can't source one from
	TotalBytes        uint64
	FreeBytes         uint64
	Capabilities      CapFlags
	OptimalBufferSize int64
}

func (d DeviceDescriptor) Intersect(other DeviceDescriptor) CapFlags {
	return d.Capabilities & other.Capabilities
}
