// Package resume - see checkpoint.go for the per-transfer durable record.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package resume

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/buntdb"

	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

// Index is an embedded lookup keyed by (source_digest, destination_path)
// that answers "is there a checkpoint for this pair" without stat-ing a
// resume sibling file per candidate - the per-file checkpoint data itself
// still lives in Checkpoint files. The Copy Driver and the Scheduler do
// not open or update an Index; they work from the Checkpoint files alone.
type Index struct {
	db   *buntdb.DB
	path string
}

// OpenIndex opens (creating if absent) the buntdb index file under dir,
// the well-known resume directory next to a tree's destination root.
func OpenIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, xerr.Wrap(xerr.Other, dir, err, "create resume index directory")
	}
	path := filepath.Join(dir, "index.db")
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.Other, path, err, "open resume index")
	}
	return &Index{db: db, path: path}, nil
}

func (ix *Index) Close() error { return ix.db.Close() }

func indexKey(sourceDigest, destinationPath string) string {
	return fmt.Sprintf("%s\x00%s", sourceDigest, destinationPath)
}

// Record marks (sourceDigest, destinationPath) as having a checkpoint at
// bytesCommitted, so a later tree scan can skip straight to destinations
// worth resuming.
func (ix *Index) Record(sourceDigest, destinationPath string, bytesCommitted int64) error {
	return ix.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(indexKey(sourceDigest, destinationPath), fmt.Sprintf("%d", bytesCommitted), nil)
		return err
	})
}

// Lookup returns the last-recorded committed-bytes count for the pair, if
// present.
func (ix *Index) Lookup(sourceDigest, destinationPath string) (int64, bool) {
	var n int64
	var found bool
	_ = ix.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(indexKey(sourceDigest, destinationPath))
		if err != nil {
			return nil // buntdb.ErrNotFound, treated as "not found"
		}
		fmt.Sscanf(v, "%d", &n)
		found = true
		return nil
	})
	return n, found
}

// Forget removes the index entry for the pair. Returns a *cos.ErrNotFound (see cos.IsErrNotFound) rather than
// buntdb's own sentinel when there was nothing to forget, so callers don't
// need to import buntdb just to tell "already gone" apart from a real error.
func (ix *Index) Forget(sourceDigest, destinationPath string) error {
	key := indexKey(sourceDigest, destinationPath)
	err := ix.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if err == buntdb.ErrNotFound {
		return cos.NewErrNotFound("resume index entry %s", key)
	}
	return err
}
