// Package zerocopy implements the Zero-Copy Dispatcher: it tries
// in-kernel copy paths in priority order and reports which method
// succeeded, or a fallback signal so the Copy Driver can drive the
// Adaptive Buffer loop instead.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package zerocopy

import (
	"os"

	"github.com/cenkalti/backoff/v4"

	"github.com/fcopy-dev/fcopy/ios"
)

// Method identifies which zero-copy mechanism moved the bytes, per §4.5's
// enumerated (not polymorphic) method list.
type Method int

const (
	MethodNone Method = iota
	MethodReflink
	MethodFileRangeCopy
	MethodSendFile
	MethodMappedIO
)

func (m Method) String() string {
	switch m {
	case MethodReflink:
		return "reflink"
	case MethodFileRangeCopy:
		return "file_range_copy"
	case MethodSendFile:
		return "sendfile"
	case MethodMappedIO:
		return "mmap"
	default:
		return "none"
	}
}

// Result is what Dispatch reports: either a successful zero-copy transfer
// or a signal that the caller must fall back to the streamed loop.
type Result struct {
	BytesTransferred int64
	MethodUsed       Method
	Fallback         bool
}

// MaxRetries bounds retries of a single method on a transient error
// (EINTR-class, short copies), per §4.5; once they are used up, the error
// is returned to the caller and no further method is tried.
const MaxRetries = 3

// MaxMapBytes bounds how large a file memory-mapped transfer will
// attempt, per §4.5's "bounded by max_map_bytes".
const MaxMapBytes = 512 * ios.MiB

// Options controls which methods the caller permits, mirroring
// CopyOptions.allow_zero_copy / allow_mapped_io.
type Options struct {
	AllowZeroCopy bool
	AllowMappedIO bool
}

// Dispatch attempts, in priority order, reflink, file-range copy,
// send-file, and memory-mapped transfer between src and dst, both already
// open with src positioned at offset 0. caps is the intersection of both
// sides' capability flags. size is the source's known length.
//
// "Unsupported" errors (capability mismatch, cross-device, filesystem
// refusal) are silent: the method is marked unavailable and the next one
// is tried. Transient errors retry the same method up to MaxRetries. Any
// other error is returned to the caller, who treats the file as failed
// rather than falling back.
func Dispatch(src, dst *os.File, size int64, caps ios.CapFlags, opts Options) (Result, error) {
	if !opts.AllowZeroCopy {
		return Result{Fallback: true}, nil
	}

	if caps.Has(ios.Reflink) {
		ok, err := tryWithRetry(func() (bool, error) { return reflink(src, dst) })
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{BytesTransferred: size, MethodUsed: MethodReflink}, nil
		}
	}

	if caps.Has(ios.FileRangeCopy) {
		n, ok, err := tryCopyWithRetry(func() (int64, bool, error) { return copyFileRange(src, dst, size) })
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{BytesTransferred: n, MethodUsed: MethodFileRangeCopy}, nil
		}
	}

	if caps.Has(ios.SendFile) {
		n, ok, err := tryCopyWithRetry(func() (int64, bool, error) { return sendFile(src, dst, size) })
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{BytesTransferred: n, MethodUsed: MethodSendFile}, nil
		}
	}

	if opts.AllowMappedIO && caps.Has(ios.MappedIO) && size > 0 && size <= MaxMapBytes {
		n, ok, err := tryCopyWithRetry(func() (int64, bool, error) { return mappedCopy(src, dst, size) })
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{BytesTransferred: n, MethodUsed: MethodMappedIO}, nil
		}
	}

	return Result{Fallback: true}, nil
}

// tryWithRetry retries a boolean-result attempt on transient errors up to
// MaxRetries, using an exponential backoff between attempts.
func tryWithRetry(attempt func() (bool, error)) (ok bool, err error) {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), MaxRetries)
	opErr := backoff.Retry(func() error {
		var e error
		ok, e = attempt()
		if e != nil && isTransient(e) {
			return e
		}
		err = e
		return nil
	}, b)
	if opErr != nil {
		return false, opErr
	}
	return ok, err
}

func tryCopyWithRetry(attempt func() (int64, bool, error)) (n int64, ok bool, err error) {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), MaxRetries)
	opErr := backoff.Retry(func() error {
		var e error
		n, ok, e = attempt()
		if e != nil && isTransient(e) {
			return e
		}
		err = e
		return nil
	}, b)
	if opErr != nil {
		return 0, false, opErr
	}
	return n, ok, err
}
