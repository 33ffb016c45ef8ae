/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fcopy-dev/fcopy/xcopy"
)

// copyFlags holds the CopyOptions surface as CLI flags, shared by the
// copy and copy-tree subcommands.
type copyFlags struct {
	preserveMetadata bool
	verify           bool
	noZeroCopy       bool
	noMappedIO       bool
	noReadAhead      bool
	overwrite        bool
	followSymlinks   bool
	noCreateDirs     bool
	discardPartial   bool
	strictMetadata   bool
	failFast         bool
	maxRetries       uint32
	progressInterval time.Duration
}

func (f *copyFlags) register(c *cobra.Command) {
	defaults := xcopy.DefaultOptions()
	c.Flags().BoolVar(&f.preserveMetadata, "preserve", defaults.PreserveMetadata, "preserve timestamps, mode, and owner")
	c.Flags().BoolVar(&f.verify, "verify", defaults.Verify, "verify destination content against source after copying")
	c.Flags().BoolVar(&f.noZeroCopy, "no-zero-copy", false, "disable reflink/copy_file_range/sendfile dispatch")
	c.Flags().BoolVar(&f.noMappedIO, "no-mapped-io", false, "disable memory-mapped fallback")
	c.Flags().BoolVar(&f.noReadAhead, "no-read-ahead", false, "disable read-ahead prefetching")
	c.Flags().BoolVar(&f.overwrite, "overwrite", defaults.Overwrite, "overwrite an existing destination")
	c.Flags().BoolVar(&f.followSymlinks, "follow-symlinks", defaults.FollowSymlinks, "follow symbolic links instead of skipping them")
	c.Flags().BoolVar(&f.noCreateDirs, "no-create-dirs", false, "fail instead of creating missing destination directories")
	c.Flags().BoolVar(&f.discardPartial, "discard-partial", defaults.DiscardPartial, "remove a partial destination on cancellation instead of leaving a resume checkpoint")
	c.Flags().BoolVar(&f.strictMetadata, "strict-metadata", defaults.StrictMetadata, "fail the copy if metadata preservation fails")
	c.Flags().BoolVar(&f.failFast, "fail-fast", defaults.FailFast, "abort a tree copy at the first per-file error")
	c.Flags().Uint32Var(&f.maxRetries, "max-retries", defaults.MaxRetries, "retry count stored in the copy options (not read by the copy engine)")
	c.Flags().DurationVar(&f.progressInterval, "progress-interval", defaults.ProgressInterval, "progress interval stored in the copy options (not read by the copy engine; samples are emitted every 200ms)")
}

func (f *copyFlags) options() xcopy.Options {
	o := xcopy.DefaultOptions()
	o.PreserveMetadata = f.preserveMetadata
	o.Verify = f.verify
	o.AllowZeroCopy = !f.noZeroCopy
	o.AllowMappedIO = !f.noMappedIO
	if f.noReadAhead {
		o.ReadAhead = xcopy.ReadAheadDisabled
	}
	o.Overwrite = f.overwrite
	o.FollowSymlinks = f.followSymlinks
	o.CreateDirs = !f.noCreateDirs
	o.DiscardPartial = f.discardPartial
	o.StrictMetadata = f.strictMetadata
	o.FailFast = f.failFast
	o.MaxRetries = f.maxRetries
	o.ProgressInterval = f.progressInterval
	return o
}
