// Package fcopy exposes the public operations collaborators (a CLI,
// bindings, a network transport server) drive: copy_file, copy_tree,
// analyze, compare, subscribe_progress, cancel, and verify (§6). It wires
// together the Device Cache, Copy Driver, Scheduler, and Operation
// registry into one entry point.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fcopy

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fcopy-dev/fcopy/cmn/nlog"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
	"github.com/fcopy-dev/fcopy/config"
	"github.com/fcopy-dev/fcopy/fs"
	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/progress"
	"github.com/fcopy-dev/fcopy/resume"
	"github.com/fcopy-dev/fcopy/sched"
	"github.com/fcopy-dev/fcopy/xcopy"
)

// Engine is the long-lived handle a collaborator keeps open across many
// copy_file/copy_tree calls; it owns the Device Cache and the Operation
// registry, both of which amortize work across calls.
type Engine struct {
	devCache *fs.Cache
	registry *progress.Registry
	cfg      config.Config
}

// NewEngine constructs an Engine; pass config.Default() for the documented
// defaults. The Engine reads cfg's retry settings (tree-copy retries) and
// network rate limit; the performance.* and cache.* settings are not
// applied - buffer sizes, worker counts and the Device Cache use their
// built-in per-class defaults.
func NewEngine(cfg config.Config) *Engine {
	return &Engine{
		devCache: fs.New("fcopy-device-cache"),
		registry: progress.NewRegistry(),
		cfg:      cfg,
	}
}

// Close releases the Engine's background housekeeping registrations.
func (e *Engine) Close() {
	e.devCache.Close()
	e.registry.Close()
}

// CopyFile resolves copy_file(src, dst, opts).
func (e *Engine) CopyFile(ctx context.Context, src, dst string, opts xcopy.Options) (progress.CopyStats, string, error) {
	if samePath(src, dst) {
		return progress.CopyStats{}, "", xerr.New(xerr.InvalidPath, dst, nil)
	}
	info, err := os.Stat(src)
	if err != nil {
		return progress.CopyStats{}, "", xerr.Wrap(xerr.NotFound, src, err, "stat source")
	}
	opts = e.withNetworkLimit(opts)

	op := e.registry.Register(ctx, "copy_file", info.Size(), 1)
	drv := xcopy.NewDriver(e.devCache, op.Agg)

	copyErr := e.retryCopy(op.Context(), drv, src, dst, opts)
	if copyErr != nil {
		op.Agg.PostError(copyErr)
		if opts.FailFast {
			stats := op.Agg.Finalize()
			e.registry.Finish(op, stats)
			return stats, op.ID, copyErr
		}
	}
	stats := op.Agg.Finalize()
	e.registry.Finish(op, stats)
	return stats, op.ID, copyErr
}

// CopyTree resolves copy_tree(src, dst, opts).
func (e *Engine) CopyTree(ctx context.Context, src, dst string, opts xcopy.Options) (progress.CopyStats, string, error) {
	if samePath(src, dst) {
		return progress.CopyStats{}, "", xerr.New(xerr.InvalidPath, dst, nil)
	}

	opts = e.withNetworkLimit(opts)
	srcDev := e.devCache.Get(src)
	totalBytes, totalFiles := treeTotals(src)

	op := e.registry.Register(ctx, "copy_tree", totalBytes, totalFiles)
	drv := xcopy.NewDriver(e.devCache, op.Agg)

	entries, walkErrCh := sched.Walk(op.Context(), src, sched.WalkOptions{FollowSymlinks: opts.FollowSymlinks})

	var firstErr error
	runErr := sched.Run(op.Context(), entries, sched.Options{
		Workers:    sched.PoolSize(srcDev.Class),
		QueueBound: sched.PoolSize(srcDev.Class) * 4,
		MakeDir: func(_ context.Context, ent sched.FileEntry) error {
			rel, relErr := filepath.Rel(src, ent.Path)
			if relErr != nil {
				return relErr
			}
			if err := sched.EnsureDir(filepath.Join(dst, rel), 0o755); err != nil && opts.FailFast {
				return err
			}
			op.Agg.PostDirCreated()
			return nil
		},
		CopyFile: func(fctx context.Context, ent sched.FileEntry) error {
			rel, relErr := filepath.Rel(src, ent.Path)
			if relErr != nil {
				return relErr
			}
			destPath := filepath.Join(dst, rel)
			if err := e.retryCopy(fctx, drv, ent.Path, destPath, opts); err != nil {
				op.Agg.PostError(err)
				if firstErr == nil {
					firstErr = err
				}
				if opts.FailFast {
					return err
				}
				return nil
			}
			return nil
		},
	})
	if runErr != nil && firstErr == nil {
		firstErr = runErr
	}
	if walkErr := <-walkErrCh; walkErr != nil && firstErr == nil {
		firstErr = walkErr
	}

	stats := op.Agg.Finalize()
	e.registry.Finish(op, stats)
	return stats, op.ID, firstErr
}

// Analyze resolves analyze(path).
func (e *Engine) Analyze(path string) ios.DeviceDescriptor {
	return e.devCache.Get(path)
}

// DiskUsage reports the apparent on-disk size of path: the file's own size
// for a regular file, or the recursive total for a directory. It's the
// slower, exact counterpart to the Device Cache's free/total space figures,
// meant for occasional reporting rather than the copy hot path.
func (e *Engine) DiskUsage(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, xerr.Wrap(xerr.NotFound, path, err, "stat path")
	}
	if !info.IsDir() {
		return uint64(info.Size()), nil
	}
	return ios.DirSizeOnDisk(path)
}

// SubscribeProgress resolves subscribe_progress(op_id).
func (e *Engine) SubscribeProgress(opID string) (<-chan progress.ProgressSample, error) {
	return e.registry.Subscribe(opID)
}

// Cancel resolves cancel(op_id).
func (e *Engine) Cancel(opID string) error {
	return e.registry.Cancel(opID)
}

// Verify resolves verify(path): a cryptographic content digest a caller
// can compare against a prior verify() result or a remote peer's.
func (e *Engine) Verify(path string) (string, error) {
	return resume.CryptographicDigest(path)
}

// retryCopy drives one file through the Copy Driver, retrying recoverable
// failures (NetworkError, Timeout, InsufficientSpace - a transient-disk-
// pressure condition may clear once concurrent transfers free buffers) per
// cfg.Retry's exponential backoff. Any other error, or exhausting
// MaxRetries, returns immediately.
func (e *Engine) retryCopy(ctx context.Context, drv *xcopy.Driver, src, dst string, opts xcopy.Options) error {
	delay := e.cfg.Retry.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= e.cfg.Retry.MaxRetries; attempt++ {
		lastErr = drv.CopyFile(ctx, src, dst, opts)
		if lastErr == nil || !xerr.IsRecoverable(lastErr) || attempt == e.cfg.Retry.MaxRetries {
			return lastErr
		}
		nlog.Warningf("%s -> %s: attempt %d/%d failed (%v), retrying in %s",
			src, dst, attempt+1, e.cfg.Retry.MaxRetries, lastErr, delay)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * e.cfg.Retry.BackoffMultiplier)
		if delay > e.cfg.Retry.MaxDelay {
			delay = e.cfg.Retry.MaxDelay
		}
	}
	return lastErr
}

// withNetworkLimit applies cfg.Network's transfer-rate cap when the caller
// hasn't already set a per-call override.
func (e *Engine) withNetworkLimit(opts xcopy.Options) xcopy.Options {
	if opts.MaxNetworkBytesPerSec == 0 {
		opts.MaxNetworkBytesPerSec = e.cfg.Network.MaxBytesPerSec
	}
	return opts
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// treeTotals walks src once up front to size the progress aggregator's
// denominators; a best-effort count, not a correctness requirement.
func treeTotals(src string) (bytes int64, files int64) {
	_ = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		bytes += info.Size()
		files++
		return nil
	})
	return bytes, files
}
