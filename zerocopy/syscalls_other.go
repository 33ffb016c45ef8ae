//go:build !linux

// Package zerocopy - see dispatcher.go.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package zerocopy

import "os"

// Non-Linux platforms have no portable reflink/copy_file_range/sendfile
// syscalls exposed identically through x/sys/unix; every priority level
// above streamed reports "unsupported" so Dispatch always falls through to
// the Adaptive Buffer loop.
func reflink(_, _ *os.File) (bool, error)                    { return false, nil }
func copyFileRange(_, _ *os.File, _ int64) (int64, bool, error) { return 0, false, nil }
func sendFile(_, _ *os.File, _ int64) (int64, bool, error)      { return 0, false, nil }
func mappedCopy(_, _ *os.File, _ int64) (int64, bool, error)    { return 0, false, nil }

func isTransient(error) bool { return false }
