// Package memsys - see buffer.go for AdaptiveBuffer.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package memsys

import (
	"sync"

	"github.com/fcopy-dev/fcopy/ios"
)

// BufferPool is a bounded free-list of AdaptiveBuffers at a fixed
// capacity. Get returns a pooled buffer when one is available at the
// requested capacity, else allocates fresh; Return inserts a returned buffer
// when the pool is below its cap and the buffer's capacity matches,
// otherwise drops it.
type BufferPool struct {
	mu         sync.Mutex
	free       []*AdaptiveBuffer
	bufferSize int64
	maxPool    int
	class      ios.StorageClass
}

func NewBufferPool(class ios.StorageClass, bufferSize int64, maxPoolSize int) *BufferPool {
	return &BufferPool{
		free:       make([]*AdaptiveBuffer, 0, maxPoolSize),
		bufferSize: bufferSize,
		maxPool:    maxPoolSize,
		class:      class,
	}
}

func (p *BufferPool) Get() *AdaptiveBuffer {
	p.mu.Lock()
	n := len(p.free)
	if n > 0 {
		buf := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		buf.Clear()
		return buf
	}
	p.mu.Unlock()

	buf := &AdaptiveBuffer{bytes: make([]byte, p.bufferSize), class: p.class}
	return buf
}

// Return inserts buf into the free-list if the pool has room and buf's
// capacity matches this pool's buffer_size exactly; otherwise it is
// dropped (left for GC).
func (p *BufferPool) Return(buf *AdaptiveBuffer) {
	if buf.Capacity() != p.bufferSize {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.maxPool {
		return
	}
	buf.Clear()
	p.free = append(p.free, buf)
}

func (p *BufferPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
