// Package sched implements the Directory Walker + Scheduler (§4.7): tree
// enumeration in a stable order, size-class classification, and a bounded
// worker pool that copies files while honoring directory-creation
// ordering and backpressure.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package sched

import (
	"context"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	cuckoo "github.com/seiflotfy/cuckoofilter"

	"github.com/fcopy-dev/fcopy/cmn/nlog"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

// EntryKind distinguishes the two event shapes the walker emits: a
// directory (create it before anything inside lands) and a regular file.
type EntryKind int

const (
	KindDir EntryKind = iota
	KindFile
)

// FileEntry is one walked path, per §4.7's documented shape.
type FileEntry struct {
	Path string
	Size int64
	Kind EntryKind
}

// visitedCapacity bounds the cuckoo filter backing symlink-cycle and
// already-visited-inode detection; a filter hit is confirmed against the
// exact set of visited keys, so a false positive never skips a file.
const visitedCapacity = 1 << 20

// WalkOptions controls traversal behavior.
type WalkOptions struct {
	FollowSymlinks bool
}

// Walk enumerates root depth-first, lexicographic per directory,
// emitting a KindDir entry for each directory strictly before any
// KindFile entry found inside it. The returned channel is closed when
// the walk completes or ctx is cancelled; a walk error is sent on errCh
// (at most once) before both channels close.
func Walk(ctx context.Context, root string, opts WalkOptions) (<-chan FileEntry, <-chan error) {
	entries := make(chan FileEntry, 256)
	errCh := make(chan error, 1)
	visited := cuckoo.NewCuckooFilter(visitedCapacity)
	seen := make(map[string]struct{})

	go func() {
		defer close(entries)
		defer close(errCh)

		err := godirwalk.Walk(root, &godirwalk.Options{
			Unsorted: false,
			Callback: func(path string, de *godirwalk.Dirent) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				if de.IsSymlink() && !opts.FollowSymlinks {
					// skip just this entry - SkipDir here would drop every
					// remaining sibling in the containing directory, not just
					// the symlink itself.
					return nil
				}

				info, statErr := os.Lstat(path)
				if statErr != nil {
					nlog.Warningf("%s: lstat during walk: %v", path, statErr)
					return nil
				}

				key := inodeKey(info)
				if key != "" {
					if visited.Lookup([]byte(key)) {
						if _, dup := seen[key]; dup {
							if de.IsDir() {
								return filepath.SkipDir
							}
							return nil
						}
					}
					visited.InsertUnique([]byte(key))
					seen[key] = struct{}{}
				}

				kind := KindFile
				if de.IsDir() {
					kind = KindDir
				}
				entry := FileEntry{Path: path, Size: info.Size(), Kind: kind}
				select {
				case entries <- entry:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			},
		})
		if err != nil && err != filepath.SkipDir {
			errCh <- xerr.Wrap(xerr.Other, root, err, "walk tree")
		}
	}()

	return entries, errCh
}

