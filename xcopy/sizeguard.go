// Package xcopy - see options.go for CopyOptions.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xcopy

import (
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/fcopy-dev/fcopy/cmn/nlog"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

// sizeGuard watches srcPath for writes during a streamed copy and flags the
// transfer the moment the file's size no longer matches what CopyFile
// started with, per §8's "files whose size changes mid-copy" boundary case.
// A concurrent writer can otherwise race the reader silently: io.ReadFull
// would simply see fewer or more bytes than srcInfo.Size() promised, with
// no signal that the source moved out from under the copy.
type sizeGuard struct {
	watcher  *fsnotify.Watcher
	expected int64
	errCh    chan error
}

// newSizeGuard starts watching path, or returns (nil, err) if the platform
// or filesystem can't back an inotify-style watch (e.g. some network
// filesystems) - callers treat that as best-effort and proceed unguarded.
func newSizeGuard(path string, expectedSize int64) (*sizeGuard, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	g := &sizeGuard{watcher: w, expected: expectedSize, errCh: make(chan error, 1)}
	go g.run(path)
	return g, nil
}

func (g *sizeGuard) run(path string) {
	for {
		select {
		case ev, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || info.Size() != g.expected {
				select {
				case g.errCh <- sizeChangedErr(path):
				default:
				}
				return
			}
		case _, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Check returns the first detected size-change error, if any, without
// blocking.
func (g *sizeGuard) Check() error {
	select {
	case err := <-g.errCh:
		return err
	default:
		return nil
	}
}

func sizeChangedErr(path string) error {
	return xerr.New(xerr.VerificationError, path, nil)
}

func (g *sizeGuard) Close() {
	if err := g.watcher.Close(); err != nil {
		nlog.Warningf("size guard close: %v", err)
	}
}
