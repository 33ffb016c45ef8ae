//go:build !linux

// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"os"
	"path/filepath"
	"time"
)

// DirSizeOnDisk walks dirPath in Go on platforms without a GNU du; it
// reports apparent size and does not dedup hardlinks.
func DirSizeOnDisk(dirPath string) (uint64, error) {
	var total uint64
	err := filepath.Walk(dirPath, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total, err
}

// GetATime has no portable stat field for access time outside syscall.Stat_t;
// platforms other than Linux fall back to the file's mtime.
func GetATime(osfi os.FileInfo) time.Time {
	return osfi.ModTime()
}
