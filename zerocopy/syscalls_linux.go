// Package zerocopy - see dispatcher.go.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package zerocopy

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// reflink whole-file clones src into dst via FICLONE. Returns (false, nil)
// on any "unsupported" condition (different filesystems, fs doesn't
// support reflink) so the caller falls through to the next method; returns
// a non-nil error only for conditions the dispatcher should surface as an
// abort.
func reflink(src, dst *os.File) (bool, error) {
	err := unix.IoctlFileClone(int(dst.Fd()), int(src.Fd()))
	if err == nil {
		return true, nil
	}
	if isUnsupportedZC(err) {
		return false, nil
	}
	return false, err
}

// copyFileRange drives the copy_file_range(2) syscall in a loop until size
// bytes have moved or the kernel signals it cannot continue in-kernel.
func copyFileRange(src, dst *os.File, size int64) (int64, bool, error) {
	var total int64
	srcOff, dstOff := int64(0), int64(0)
	for total < size {
		n, err := unix.CopyFileRange(int(src.Fd()), &srcOff, int(dst.Fd()), &dstOff, int(size-total), 0)
		if err != nil {
			if total == 0 && isUnsupportedZC(err) {
				return 0, false, nil
			}
			if isTransient(err) {
				return total, false, err // let retry wrapper decide
			}
			return total, false, err
		}
		if n == 0 {
			break
		}
		total += int64(n)
	}
	return total, total == size, nil
}

// sendFile drives sendfile(2) loop for regular-file-to-regular-file
// transfer (on Linux this also works fd-to-fd for this use case).
func sendFile(src, dst *os.File, size int64) (int64, bool, error) {
	var total int64
	off := int64(0)
	for total < size {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &off, int(size-total))
		if err != nil {
			if total == 0 && isUnsupportedZC(err) {
				return 0, false, nil
			}
			return total, false, err
		}
		if n == 0 {
			break
		}
		total += int64(n)
	}
	return total, total == size, nil
}

// mappedCopy transfers bytes via mmap(2) on the source and a plain write
// on the destination - cheaper than streaming for large local files when
// the page cache is already warm.
func mappedCopy(src, dst *os.File, size int64) (int64, bool, error) {
	data, err := unix.Mmap(int(src.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		if isUnsupportedZC(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	defer unix.Munmap(data)

	n, err := dst.Write(data)
	if err != nil {
		return int64(n), false, err
	}
	return int64(n), int64(n) == size, nil
}

func isUnsupportedZC(err error) bool {
	switch err {
	case unix.ENOTSUP, unix.EOPNOTSUPP, unix.EXDEV, unix.EINVAL:
		return true
	default:
		return false
	}
}

func isTransient(err error) bool {
	switch err {
	case syscall.EINTR, syscall.EAGAIN:
		return true
	default:
		return false
	}
}
