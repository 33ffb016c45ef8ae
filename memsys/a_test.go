// Package memsys provides the Adaptive Buffer and Buffer Pool.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package memsys_test

import (
	"testing"

	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/memsys"
)

func TestAdaptiveBufferBounds(t *testing.T) {
	buf := memsys.NewAdaptiveBuffer(ios.Ssd)
	if buf.Capacity() != 512*ios.KiB {
		t.Fatalf("expected ssd default 512KiB, got %d", buf.Capacity())
	}

	// ten high-throughput, low-latency samples should grow the buffer,
	// clamped to the class max.
	for i := 0; i < 10; i++ {
		buf.Adapt(300, 5)
	}
	if buf.Capacity() < 1*ios.MiB {
		t.Fatalf("expected buffer to have grown past 1MiB, got %d", buf.Capacity())
	}
	if buf.Capacity() > 16*ios.MiB {
		t.Fatalf("buffer exceeded class max: %d", buf.Capacity())
	}

	// then feed it low-throughput, high-latency samples: it should shrink
	// back toward the class min.
	for i := 0; i < 20; i++ {
		buf.Adapt(20, 200)
	}
	if buf.Capacity() != 64*ios.KiB {
		t.Fatalf("expected buffer to settle at class min 64KiB, got %d", buf.Capacity())
	}
}

func TestAdaptiveBufferHoldIsIdempotent(t *testing.T) {
	buf := memsys.NewAdaptiveBuffer(ios.Hdd)
	before := buf.Capacity()
	for i := 0; i < 5; i++ {
		buf.Adapt(100, 50) // neither shrink nor grow band
	}
	if buf.Capacity() != before {
		t.Fatalf("hold-range samples should not change capacity: got %d, want %d", buf.Capacity(), before)
	}
}

func TestAdaptiveBufferSplitPrefix(t *testing.T) {
	buf := memsys.NewAdaptiveBuffer(ios.Ssd)
	region := buf.AsMutRegion()
	copy(region, []byte("hello world"))
	buf.SetLen(11)

	prefix := buf.SplitPrefix(5)
	if string(prefix) != "hello" {
		t.Fatalf("got %q", prefix)
	}
	if string(buf.Bytes()) != " world" {
		t.Fatalf("got %q", buf.Bytes())
	}
}

func TestBufferPoolBounded(t *testing.T) {
	pool := memsys.NewBufferPool(ios.Ssd, 512*ios.KiB, 2)

	a := pool.Get()
	b := pool.Get()
	c := pool.Get()

	pool.Return(a)
	pool.Return(b)
	pool.Return(c) // pool is full, dropped

	if pool.Size() != 2 {
		t.Fatalf("expected pool size clamped to 2, got %d", pool.Size())
	}
}

func TestBufferPoolDropsWrongCapacity(t *testing.T) {
	pool := memsys.NewBufferPool(ios.Ssd, 512*ios.KiB, 4)
	mismatched := memsys.NewAdaptiveBuffer(ios.Hdd) // 64KiB, not 512KiB
	pool.Return(mismatched)
	if pool.Size() != 0 {
		t.Fatal("expected mismatched-capacity buffer to be dropped")
	}
}
