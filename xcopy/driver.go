// Package xcopy - see options.go for CopyOptions.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xcopy

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/cmn/nlog"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
	"github.com/fcopy-dev/fcopy/fs"
	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/memsys"
	"github.com/fcopy-dev/fcopy/progress"
	"github.com/fcopy-dev/fcopy/readahead"
	"github.com/fcopy-dev/fcopy/resume"
	"github.com/fcopy-dev/fcopy/zerocopy"
)

// checkpointEvery bounds how often the streamed loop writes a resume
// checkpoint, trading recovery granularity for fsync overhead.
const checkpointEvery = 8 * ios.MiB

// maxPooledBuffers bounds each storage class's Buffer Pool free-list.
const maxPooledBuffers = 16

// bufferPools holds one Buffer Pool per storage class, shared across every
// Driver in the process: a class's buffer size is stable (its
// ios.BufferBoundsFor default), so pooling at class granularity lets
// back-to-back copies of the same class reuse buffers regardless of which
// Driver or Engine call allocated them first.
var (
	bufferPoolsMu sync.Mutex
	bufferPools   = map[ios.StorageClass]*memsys.BufferPool{}
)

func bufferPoolFor(class ios.StorageClass) *memsys.BufferPool {
	bufferPoolsMu.Lock()
	defer bufferPoolsMu.Unlock()
	p, ok := bufferPools[class]
	if !ok {
		p = memsys.NewBufferPool(class, ios.BufferBoundsFor(class).Default, maxPooledBuffers)
		bufferPools[class] = p
	}
	return p
}

// Driver drives files through the Copy Driver state machine (§4.6). A
// Driver keeps no per-file state, so one Driver serves every CopyFile call
// of an operation, including concurrent ones.
type Driver struct {
	devCache *fs.Cache
	agg      *progress.Aggregator
}

func NewDriver(devCache *fs.Cache, agg *progress.Aggregator) *Driver {
	return &Driver{devCache: devCache, agg: agg}
}

// CopyFile takes srcPath to dstPath through Start -> ... -> Done, per §4.6.
func (d *Driver) CopyFile(ctx context.Context, srcPath, dstPath string, opts Options) error {
	src, srcInfo, err := openSource(srcPath, opts)
	if err != nil {
		return err
	}
	defer src.Close()

	srcDev := d.devCache.Get(srcPath)
	dstDev := d.devCache.Get(filepath.Dir(dstPath))

	resumeOffset, checkpointID, err := checkResume(src, srcInfo, dstPath)
	if err != nil {
		return err
	}

	dst, err := openDest(dstPath, opts, resumeOffset)
	if err != nil {
		return err
	}
	defer dst.Close()

	if resumeOffset > 0 {
		nlog.Infof("resuming %s from offset %d", dstPath, resumeOffset)
		if _, err := src.Seek(resumeOffset, io.SeekStart); err != nil {
			return xerr.Wrap(xerr.Other, srcPath, err, "seek source to resume offset")
		}
	}

	streamed := resumeOffset > 0
	if !streamed {
		res, err := d.dispatch(ctx, src, dst, srcInfo.Size(), srcDev, dstDev, opts)
		if err != nil {
			return err
		}
		if res.Fallback {
			streamed = true
		} else {
			nlog.Infof("%s -> %s: %s, %d bytes", srcPath, dstPath, res.MethodUsed, res.BytesTransferred)
			if d.agg != nil {
				d.agg.PostZeroCopy(res.BytesTransferred)
			}
		}
	}
	if streamed {
		if err := d.streamedCopy(ctx, src, dst, srcPath, dstPath, srcInfo, srcDev, dstDev, resumeOffset, checkpointID, opts); err != nil {
			return err
		}
	}

	if opts.PreserveMetadata {
		if err := preserveMetadata(srcInfo, dstPath); err != nil && opts.StrictMetadata {
			return xerr.Wrap(xerr.Other, dstPath, err, "preserve metadata")
		} else if err != nil {
			nlog.Warningf("%s: metadata preservation degraded: %v", dstPath, err)
		}
	}

	if opts.Verify {
		if err := verifyContent(srcPath, dstPath); err != nil {
			markUnverified(dstPath)
			return xerr.Wrap(xerr.VerificationError, dstPath, err, "content verification failed")
		}
	}

	if err := dst.Sync(); err != nil {
		return xerr.Wrap(xerr.Other, dstPath, err, "fsync destination")
	}
	_ = resume.Remove(dstPath)

	if d.agg != nil {
		d.agg.PostFileDone(0)
	}
	return nil
}

func openSource(srcPath string, opts Options) (*os.File, os.FileInfo, error) {
	info, err := os.Lstat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, xerr.New(xerr.NotFound, srcPath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, xerr.New(xerr.PermissionDenied, srcPath, err)
		}
		return nil, nil, xerr.Wrap(xerr.Other, srcPath, err, "stat source")
	}
	if info.Mode()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
		return nil, nil, xerr.New(xerr.InvalidPath, srcPath, nil)
	}
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsPermission(err) {
			return nil, nil, xerr.New(xerr.PermissionDenied, srcPath, err)
		}
		return nil, nil, xerr.Wrap(xerr.Other, srcPath, err, "open source")
	}
	info, err = f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, xerr.Wrap(xerr.Other, srcPath, err, "stat open source")
	}
	return f, info, nil
}

// checkResume implements §4.6's CheckResume state: a checkpoint is
// trusted only if source size, mtime, and prefix digest all still match.
// It also returns the checkpoint's durable CheckpointID when one is
// resumed, or a freshly minted one otherwise, so later checkpoint writes
// for this transfer keep a stable identity.
func checkResume(src *os.File, srcInfo os.FileInfo, dstPath string) (int64, string, error) {
	cp, ok, err := resume.Load(dstPath)
	if err != nil {
		nlog.Warningf("%s: ignoring unreadable checkpoint: %v", dstPath, err)
		return 0, resume.NewCheckpointID(), nil
	}
	if !ok {
		return 0, resume.NewCheckpointID(), nil
	}
	digest, err := resume.DigestPrefix(src)
	if err != nil {
		return 0, resume.NewCheckpointID(), nil
	}
	if !cp.Matches(srcInfo.Size(), srcInfo.ModTime(), digest) {
		return 0, resume.NewCheckpointID(), nil
	}
	return cp.BytesCommitted, cp.CheckpointID, nil
}

func openDest(dstPath string, opts Options, resumeOffset int64) (*os.File, error) {
	if opts.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
			return nil, xerr.Wrap(xerr.Other, dstPath, err, "create destination directories")
		}
	}
	if resumeOffset > 0 {
		f, err := os.OpenFile(dstPath, os.O_WRONLY, 0o644)
		if err != nil {
			return nil, xerr.Wrap(xerr.Other, dstPath, err, "reopen destination for resume")
		}
		if _, err := f.Seek(resumeOffset, io.SeekStart); err != nil {
			f.Close()
			return nil, xerr.Wrap(xerr.Other, dstPath, err, "seek destination to resume offset")
		}
		return f, nil
	}
	flags := os.O_WRONLY | os.O_CREATE
	if opts.Overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(dstPath, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, xerr.New(xerr.Other, dstPath, err)
		}
		if os.IsPermission(err) {
			return nil, xerr.New(xerr.PermissionDenied, dstPath, err)
		}
		if os.IsNotExist(err) {
			return nil, xerr.New(xerr.InvalidPath, dstPath, err)
		}
		return nil, xerr.Wrap(xerr.Other, dstPath, err, "open destination")
	}
	return f, nil
}

func (d *Driver) dispatch(_ context.Context, src, dst *os.File, size int64, srcDev, dstDev ios.DeviceDescriptor, opts Options) (zerocopy.Result, error) {
	caps := srcDev.Intersect(dstDev)
	return zerocopy.Dispatch(src, dst, size, caps, zerocopy.Options{
		AllowZeroCopy: opts.AllowZeroCopy,
		AllowMappedIO: opts.AllowMappedIO,
	})
}

// streamedCopy drives the Adaptive Buffer loop per §4.6: fill from source
// via read-ahead, write to destination, sample throughput/latency, adapt
// buffer, checkpoint every checkpointEvery bytes.
func (d *Driver) streamedCopy(ctx context.Context, src, dst *os.File, srcPath, dstPath string, srcInfo os.FileInfo, srcDev, dstDev ios.DeviceDescriptor, startOffset int64, checkpointID string, opts Options) error {
	bufSize := cos.MaxI64(srcDev.OptimalBufferSize, dstDev.OptimalBufferSize)
	if opts.BufferOverride > 0 {
		bufSize = opts.BufferOverride
	}
	pool := bufferPoolFor(srcDev.Class)
	buf := pool.Get()
	defer pool.Return(buf)
	buf.Reserve(bufSize)

	var reader io.Reader = src
	var ra *readahead.Reader
	if opts.ReadAhead != ReadAheadDisabled && readahead.Enabled(srcDev.Class, srcInfo.Size()) {
		ra = readahead.New(ctx, src, srcDev.Class)
		reader = ra
	}
	if ra != nil {
		defer ra.Cancel()
	}

	guard, guardErr := newSizeGuard(srcPath, srcInfo.Size())
	if guardErr != nil {
		nlog.Warningf("%s: size-change detection unavailable: %v", srcPath, guardErr)
	} else {
		defer guard.Close()
	}

	var limiter *rate.Limiter
	if opts.MaxNetworkBytesPerSec > 0 && (srcDev.Class == ios.Network || dstDev.Class == ios.Network) {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxNetworkBytesPerSec), int(bufSize))
	}

	total := startOffset
	lastCheckpoint := startOffset
	for {
		if err := ctx.Err(); err != nil {
			return handleCancel(dstPath, opts, err)
		}
		if guard != nil {
			if err := guard.Check(); err != nil {
				return err
			}
		}

		region := buf.AsMutRegion()
		start := time.Now()
		n, readErr := io.ReadFull(reader, region)
		if readErr == io.ErrUnexpectedEOF {
			readErr = nil
		}
		if n > 0 {
			if _, err := dst.Write(region[:n]); err != nil {
				switch {
				case cos.IsErrOOS(err):
					return xerr.Wrap(xerr.InsufficientSpace, dstPath, err, "write destination")
				case cos.IsErrSyscallTimeout(err):
					nlog.Warningf("%s: write syscall timed out (%v)", dstPath, cos.UnwrapSyscallErr(err))
					return xerr.Wrap(xerr.Timeout, dstPath, err, "write destination")
				default:
					return xerr.Wrap(xerr.Other, dstPath, err, "write destination")
				}
			}
			total += int64(n)
			if d.agg != nil {
				d.agg.PostFileBytes(srcPath, total, srcInfo.Size(), int64(n))
			}
			if limiter != nil {
				if err := limiter.WaitN(ctx, n); err != nil {
					return handleCancel(dstPath, opts, err)
				}
			}

			elapsed := time.Since(start).Seconds()
			if elapsed > 0 {
				mbps := float64(n) / (1 << 20) / elapsed
				buf.Adapt(mbps, elapsed*1000)
			}

			if total-lastCheckpoint >= checkpointEvery {
				d.writeCheckpoint(src, srcPath, dstPath, srcInfo, checkpointID, total)
				lastCheckpoint = total
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if cos.IsErrSyscallTimeout(readErr) {
				nlog.Warningf("%s: read syscall timed out (%v)", srcPath, cos.UnwrapSyscallErr(readErr))
				return xerr.Wrap(xerr.Timeout, srcPath, readErr, "read source")
			}
			return xerr.Wrap(xerr.Other, srcPath, readErr, "read source")
		}
	}
	return nil
}

func (d *Driver) writeCheckpoint(src *os.File, srcPath, dstPath string, srcInfo os.FileInfo, checkpointID string, bytesCommitted int64) {
	digest, err := resume.DigestPrefix(src)
	if err != nil {
		return
	}
	_ = resume.Save(resume.Checkpoint{
		CheckpointID:        checkpointID,
		SourcePath:          srcPath,
		DestinationPath:     dstPath,
		FileSize:            srcInfo.Size(),
		SourceModTime:       srcInfo.ModTime(),
		ContentDigestPrefix: digest,
		BytesCommitted:      bytesCommitted,
		CreatedAt:           time.Now(),
	})
}

func handleCancel(dstPath string, opts Options, cause error) error {
	if opts.DiscardPartial {
		_ = os.Remove(dstPath)
		_ = resume.Remove(dstPath)
	}
	return xerr.New(xerr.Cancelled, dstPath, cause)
}

func preserveMetadata(srcInfo os.FileInfo, dstPath string) error {
	if err := os.Chmod(dstPath, srcInfo.Mode()); err != nil {
		return err
	}
	return os.Chtimes(dstPath, ios.GetATime(srcInfo), srcInfo.ModTime())
}

func verifyContent(srcPath, dstPath string) error {
	srcDigest, err := resume.CryptographicDigest(srcPath)
	if err != nil {
		return err
	}
	dstDigest, err := resume.CryptographicDigest(dstPath)
	if err != nil {
		return err
	}
	if srcDigest != dstDigest {
		return xerr.New(xerr.VerificationError, dstPath, nil)
	}
	return nil
}

func markUnverified(dstPath string) {
	marker := dstPath + ".unverified"
	_ = os.WriteFile(marker, []byte(time.Now().Format(time.RFC3339)+"\n"), 0o644)
}
