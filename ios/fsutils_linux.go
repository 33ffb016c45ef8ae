// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DirSizeOnDisk returns the apparent (not allocated-block) size of dirPath
// and everything under it, shelling out to du rather than re-walking the
// tree in Go: du already discounts hardlinked duplicates within the scan,
// which a naive Lstat-and-sum walk would double count.
func DirSizeOnDisk(dirPath string) (uint64, error) {
	cmd := exec.Command("du", "-bc", dirPath)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	var total uint64
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 || fields[1] != "total" {
			continue
		}
		total, err = strconv.ParseUint(fields[0], 10, 64)
	}
	if werr := cmd.Wait(); werr != nil {
		return 0, werr
	}
	if err != nil {
		return 0, fmt.Errorf("parse du output: %w", err)
	}
	return total, nil
}

func getFSStats(path string) (unix.Statfs_t, error) {
	var fsStats unix.Statfs_t
	err := unix.Statfs(path, &fsStats)
	return fsStats, err
}

// GetFSStats reports the total and available block counts and block size
// for the filesystem backing path, per statfs(2). ios.probe uses it to
// derive TotalBytes/FreeBytes for a DeviceDescriptor.
func GetFSStats(path string) (blocks, bavail uint64, bsize int64, err error) {
	var fsStats unix.Statfs_t
	fsStats, err = getFSStats(path)
	if err != nil {
		return
	}
	return fsStats.Blocks, fsStats.Bavail, fsStats.Bsize, nil
}

func GetATime(osfi os.FileInfo) time.Time {
	stat := osfi.Sys().(*syscall.Stat_t)
	atime := time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	// NOTE: see https://en.wikipedia.org/wiki/Stat_(system_call)#Criticism_of_atime
	return atime
}
