/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package sched

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/cmn/nlog"
	"github.com/fcopy-dev/fcopy/ios"
)

// Size-class boundaries, per §4.7.
const (
	SmallMax  = 64 * ios.KiB
	MediumMax = 64 * ios.MiB
)

type SizeClass int

const (
	Small SizeClass = iota
	Medium
	Large
)

func ClassifySize(size int64) SizeClass {
	switch {
	case size <= SmallMax:
		return Small
	case size <= MediumMax:
		return Medium
	default:
		return Large
	}
}

// smallBatchSize bounds how many Small files one worker task handles
// serially before the scheduler hands out the next batch, amortizing
// per-task dispatch overhead over many tiny files.
const smallBatchSize = 64

// PoolSize picks the worker count per §4.7: GOMAXPROCS clamped to
// [1, 256], capped at 2 for Hdd (seek thrash) and bounded for Network
// (connection-limited) classes.
func PoolSize(class ios.StorageClass) int {
	n := runtime.GOMAXPROCS(0)
	switch class {
	case ios.Hdd:
		if n > 2 {
			n = 2
		}
	case ios.Network:
		if n > 8 {
			n = 8
		}
	}
	return int(cos.ClampI64(int64(n), 1, 256))
}

// CopyFunc copies one file entry; MkdirFunc creates one directory entry.
type CopyFunc func(ctx context.Context, entry FileEntry) error
type MkdirFunc func(ctx context.Context, entry FileEntry) error

// Options configures a Scheduler run.
type Options struct {
	Workers      int
	QueueBound   int
	CopyFile     CopyFunc
	MakeDir      MkdirFunc
}

// Run drains entries through a bounded worker pool. Directories are
// always handled inline on the producer side (so directory creation
// strictly happens-before any file dispatched after it), while files
// fan out across the pool: Small files batch together onto a single
// worker task, Medium and Large files each get their own task.
//
// Backpressure: the pool's pending queue is bounded by QueueBound; the
// walk is throttled implicitly because entries is itself bounded and
// unread while the pool is saturated.
func Run(ctx context.Context, entries <-chan FileEntry, opts Options) error {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueBound < 1 {
		opts.QueueBound = opts.Workers * 4
	}

	group, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, opts.Workers)
	pending := make(chan struct{}, opts.QueueBound)

	var batch []FileEntry
	flush := func() {
		if len(batch) == 0 {
			return
		}
		b := batch
		batch = nil
		acquire(sem, pending)
		group.Go(func() error {
			defer release(sem, pending)
			for _, e := range b {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := opts.CopyFile(gctx, e); err != nil {
					return err
				}
			}
			return nil
		})
	}

	for entry := range entries {
		if gctx.Err() != nil {
			break
		}
		switch entry.Kind {
		case KindDir:
			flush()
			if opts.MakeDir != nil {
				if err := opts.MakeDir(gctx, entry); err != nil {
					_ = group.Wait()
					return err
				}
			}
			continue
		}

		switch ClassifySize(entry.Size) {
		case Small:
			batch = append(batch, entry)
			if len(batch) >= smallBatchSize {
				flush()
			}
		default:
			flush()
			e := entry
			acquire(sem, pending)
			group.Go(func() error {
				defer release(sem, pending)
				return opts.CopyFile(gctx, e)
			})
		}
	}
	flush()

	return group.Wait()
}

func acquire(sem, pending chan struct{}) {
	sem <- struct{}{}
	pending <- struct{}{}
}

func release(sem, pending chan struct{}) {
	<-pending
	<-sem
}

// EnsureDir creates the destination directory path and any missing
// parents. An already existing directory is not an error; any other
// failure is logged as a warning and returned.
func EnsureDir(path string, mode os.FileMode) error {
	if err := os.MkdirAll(path, mode); err != nil {
		nlog.Warningf("%s: mkdir: %v", path, err)
		return err
	}
	return nil
}
