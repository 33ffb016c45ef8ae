//go:build !linux

// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// probe on non-Linux platforms leans on gopsutil for filesystem identity
// and free/total space; it cannot feature-test rotational/reflink support
// as precisely as the /sys/block walk on Linux, so it classifies
// conservatively from the reported fstype only.
func probe(path string) (DeviceDescriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DeviceDescriptor{}, err
	}

	usage, err := disk.Usage(abs)
	if err != nil {
		return DeviceDescriptor{}, err
	}

	class := classifyFSType(usage.Fstype)
	bounds := classBufferBounds[class]

	var caps CapFlags
	if class != Network {
		caps |= SendFile | FileRangeCopy | MappedIO | SparsePreserve
	}

	return DeviceDescriptor{
		Class:             class,
		Filesystem:        usage.Fstype,
		TotalBytes:        usage.Total,
		FreeBytes:         usage.Free,
		Capabilities:      caps,
		OptimalBufferSize: bounds.Default,
	}, nil
}

func classifyFSType(fstype string) StorageClass {
	switch fstype {
	case "nfs", "nfs4", "smbfs", "cifs", "afpfs":
		return Network
	case "tmpfs", "ramfs":
		return RamDisk
	default:
		return Unknown
	}
}
