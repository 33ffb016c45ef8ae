// Package memsys provides the Adaptive Buffer and Buffer Pool: a
// size-bounded byte container that grows and shrinks from measured
// throughput/latency samples within fixed per-class bounds, and a bounded
// free-list that recycles them.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package memsys

import (
	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/ios"
)

// Adaptation thresholds from §4.3.
const (
	shrinkThroughputMBps = 50
	shrinkLatencyMs      = 100
	growThroughputMBps   = 200
	growLatencyMs        = 10

	shrinkFactor = 0.75
	growFactor   = 1.5
)

// AdaptiveBuffer is a size-bounded byte container whose capacity is
// adjusted at runtime from observed performance samples, clamped to the
// bounds of its StorageClass.
type AdaptiveBuffer struct {
	bytes []byte
	len   int
	class ios.StorageClass
}

// NewAdaptiveBuffer allocates a buffer at the class default size.
func NewAdaptiveBuffer(class ios.StorageClass) *AdaptiveBuffer {
	bounds := ios.BufferBoundsFor(class)
	return &AdaptiveBuffer{
		bytes: make([]byte, bounds.Default),
		class: class,
	}
}

func (b *AdaptiveBuffer) Capacity() int64       { return int64(cap(b.bytes)) }
func (b *AdaptiveBuffer) Len() int              { return b.len }
func (b *AdaptiveBuffer) Class() ios.StorageClass { return b.class }

// Reserve grows the backing array to at least n bytes, clamped to the
// class max. It never shrinks the backing array; use adapt for that.
func (b *AdaptiveBuffer) Reserve(n int64) {
	bounds := ios.BufferBoundsFor(b.class)
	n = cos.MinI64(n, bounds.Max)
	if int64(cap(b.bytes)) >= n {
		return
	}
	grown := make([]byte, n)
	copy(grown, b.bytes[:b.len])
	b.bytes = grown
}

// Clear resets len to zero without releasing capacity.
func (b *AdaptiveBuffer) Clear() { b.len = 0 }

// AsMutRegion exposes the full backing capacity for a kernel read to fill;
// the caller must call SetLen afterward with the number of bytes written.
func (b *AdaptiveBuffer) AsMutRegion() []byte { return b.bytes[:cap(b.bytes)] }

// SetLen records how many bytes of AsMutRegion() are valid data.
func (b *AdaptiveBuffer) SetLen(n int) { b.len = n }

// Bytes returns the valid (len-bounded) slice of data currently held.
func (b *AdaptiveBuffer) Bytes() []byte { return b.bytes[:b.len] }

// SplitPrefix yields the first n bytes as a standalone slice (a copy, not
// a view) and shifts the remainder of the buffer down to offset zero,
// retaining the tail as the buffer's new content.
func (b *AdaptiveBuffer) SplitPrefix(n int) []byte {
	if n > b.len {
		n = b.len
	}
	prefix := make([]byte, n)
	copy(prefix, b.bytes[:n])

	remaining := b.len - n
	copy(b.bytes, b.bytes[n:b.len])
	b.len = remaining
	return prefix
}

// Adapt applies the §4.3 adaptation policy for a single throughput/latency
// sample. It is idempotent for samples in the hold range, and growth and
// shrink never exceed the class bounds.
func (b *AdaptiveBuffer) Adapt(throughputMBps, latencyMs float64) {
	bounds := ios.BufferBoundsFor(b.class)
	current := int64(cap(b.bytes))

	var target int64
	switch {
	case throughputMBps < shrinkThroughputMBps || latencyMs > shrinkLatencyMs:
		target = int64(float64(current) * shrinkFactor)
		if target < bounds.Min {
			target = bounds.Min
		}
	case throughputMBps > growThroughputMBps && latencyMs < growLatencyMs:
		target = int64(float64(current) * growFactor)
		if target > bounds.Max {
			target = bounds.Max
		}
	default:
		target = current
	}

	if target == current {
		return
	}
	resized := make([]byte, target)
	n := b.len
	if int64(n) > target {
		n = int(target)
	}
	copy(resized, b.bytes[:n])
	b.bytes = resized
	if b.len > len(b.bytes) {
		b.len = len(b.bytes)
	}
}
