// Package readahead implements the per-class prefetch window the Copy
// Driver's streamed loop uses: while the writer consumes the current
// buffer, the reader issues the next read, with at most one outstanding
// prefetch.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package readahead

import (
	"context"
	"io"

	"github.com/fcopy-dev/fcopy/ios"
)

// minSizeMultiple is the §4.4 enablement rule: read-ahead only kicks in
// when the file is at least 10x the window size.
const minSizeMultiple = 10

// Enabled reports whether read-ahead should be used for a file of fileSize
// bytes on the given StorageClass.
func Enabled(class ios.StorageClass, fileSize int64) bool {
	window := ios.ReadAheadWindowFor(class)
	return fileSize >= minSizeMultiple*window
}

type chunk struct {
	buf []byte
	n   int
	err error
}

// Reader wraps an io.Reader with a single outstanding prefetch: the next
// window-sized read runs on its own goroutine while the caller consumes
// the previous one. Cancel drops the in-flight prefetch result rather
// than waiting for it to land.
type Reader struct {
	src     io.Reader
	window  int
	ch      chan chunk
	ctx     context.Context
	cancel  context.CancelFunc
	done    bool
	leftover []byte
}

// New wraps src with a read-ahead prefetcher sized to class's window and
// starts the first prefetch; every Read hands back an already-fetched
// chunk and immediately kicks off the next prefetch.
func New(ctx context.Context, src io.Reader, class ios.StorageClass) *Reader {
	window := int(ios.ReadAheadWindowFor(class))
	cctx, cancel := context.WithCancel(ctx)
	r := &Reader{
		src:    src,
		window: window,
		ch:     make(chan chunk, 1),
		ctx:    cctx,
		cancel: cancel,
	}
	r.prefetch()
	return r
}

func (r *Reader) prefetch() {
	go func() {
		buf := make([]byte, r.window)
		n, err := io.ReadFull(r.src, buf)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		select {
		case r.ch <- chunk{buf: buf, n: n, err: err}:
		case <-r.ctx.Done():
		}
	}()
}

// Read blocks for the in-flight prefetch, copies it into p, and - unless
// the stream has ended - immediately starts the next prefetch.
func (r *Reader) Read(p []byte) (int, error) {
	if len(r.leftover) > 0 {
		n := copy(p, r.leftover)
		r.leftover = r.leftover[n:]
		return n, nil
	}
	if r.done {
		return 0, io.EOF
	}
	select {
	case c := <-r.ch:
		n := copy(p, c.buf[:c.n])
		if n < c.n {
			r.leftover = c.buf[n:c.n]
		}
		if c.err != nil {
			r.done = true
			if n > 0 || len(r.leftover) > 0 {
				return n, nil
			}
			return 0, c.err
		}
		r.prefetch()
		return n, nil
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	}
}

// Cancel drops the in-flight prefetch before propagating cancellation to
// the caller, per §4.4.
func (r *Reader) Cancel() {
	r.cancel()
}
