// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/fcopy-dev/fcopy/cmn/cos"
)

// Filesystem magic numbers used to classify remote/pseudo mounts, from
// linux/magic.h.
const (
	magicNFS    = 0x6969
	magicSMB    = 0x517b
	magicCIFS   = 0xff534d42
	magicSMB2   = 0xfe534d42
	magicTmpfs  = 0x01021994
	magicRamfs  = 0x858458f6
	magicOverlay = 0x794c7630
)

func probe(path string) (DeviceDescriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DeviceDescriptor{}, err
	}

	fsStat, err := getFSStats(abs)
	if err != nil {
		return DeviceDescriptor{}, err
	}
	blocks, bavail, bsize, err := GetFSStats(abs)
	if err != nil {
		return DeviceDescriptor{}, err
	}

	class := classifyMagic(uint64(fsStat.Type))
	if class == Unknown {
		class = classifyRotational(abs)
	}

	caps := probeCaps(abs, class)
	bounds := classBufferBounds[class]

	return DeviceDescriptor{
		Class:             class,
		Filesystem:        fsTypeName(uint64(fsStat.Type)),
		FilesystemID:      cos.FsID(fsStat.Fsid.Val),
		TotalBytes:        blocks * uint64(bsize),
		FreeBytes:         bavail * uint64(bsize),
		Capabilities:      caps,
		OptimalBufferSize: bounds.Default,
	}, nil
}

func classifyMagic(magic uint64) StorageClass {
	switch magic {
	case magicNFS, magicSMB, magicCIFS, magicSMB2:
		return Network
	case magicTmpfs, magicRamfs:
		return RamDisk
	default:
		return Unknown
	}
}

func fsTypeName(magic uint64) string {
	switch magic {
	case magicNFS:
		return "nfs"
	case magicSMB, magicCIFS, magicSMB2:
		return "smb"
	case magicTmpfs:
		return "tmpfs"
	case magicRamfs:
		return "ramfs"
	case magicOverlay:
		return "overlayfs"
	default:
		return fmt.Sprintf("0x%x", magic)
	}
}

// classifyRotational resolves the underlying block device for abs via its
// major:minor device number, then reads its queue/rotational flag under
// /sys. Any failure along this chain returns Unknown, never an error - the
// caller already committed to Unknown by the time this runs.
func classifyRotational(abs string) StorageClass {
	var st unix.Stat_t
	if err := unix.Stat(abs, &st); err != nil {
		return Unknown
	}
	major := unix.Major(uint64(st.Dev))
	minor := unix.Minor(uint64(st.Dev))

	sysDev := fmt.Sprintf("/sys/dev/block/%d:%d", major, minor)
	target, err := os.Readlink(sysDev)
	if err != nil {
		return Unknown
	}
	devDir := filepath.Join("/sys/dev/block", target)
	devDir = filepath.Clean(devDir)

	rot, ok := readRotational(devDir)
	if !ok {
		// devDir may point at a partition (.../sda/sda1); the whole-disk
		// queue/ lives one level up.
		rot, ok = readRotational(filepath.Dir(devDir))
		if !ok {
			return Unknown
		}
	}
	if rot {
		return Hdd
	}
	return Ssd
}

func readRotational(devDir string) (rotational, ok bool) {
	data, err := os.ReadFile(filepath.Join(devDir, "queue", "rotational"))
	if err != nil {
		return false, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, false
	}
	return v == 1, true
}

// probeCaps feature-tests zero-copy capabilities, per §4.1: attempt a
// reflink on a zero-byte throwaway, and assume send-file/file-range support
// on any local regular filesystem (both are syscalls, not filesystem
// features, on Linux).
func probeCaps(dir string, class StorageClass) CapFlags {
	var caps CapFlags
	if class != Network {
		caps |= SendFile | FileRangeCopy
	}
	if class == Ssd || class == Hdd || class == RamDisk {
		caps |= MappedIO
	}
	if probeReflink(dir) {
		caps |= Reflink
	}
	if class != Network {
		caps |= SparsePreserve
	}
	return caps
}

// probeReflink attempts FICLONE between two throwaway files in dir and
// reports whether the underlying filesystem supports it. Failure of any
// kind (permission, ENOTSUP, missing dir) simply reports false.
func probeReflink(dir string) bool {
	src, err := os.CreateTemp(dir, ".fcopy-probe-src-*")
	if err != nil {
		return false
	}
	defer os.Remove(src.Name())
	defer src.Close()

	dst, err := os.CreateTemp(dir, ".fcopy-probe-dst-*")
	if err != nil {
		return false
	}
	defer os.Remove(dst.Name())
	defer dst.Close()

	err = unix.IoctlFileClone(int(dst.Fd()), int(src.Fd()))
	return err == nil
}

func isUnsupported(err error) bool {
	return err == syscall.ENOTSUP || err == syscall.EOPNOTSUPP || err == syscall.EXDEV || err == syscall.EINVAL
}
