// Package hk provides a mechanism for registering cleanup/refresh functions
// that are invoked at specified intervals - the same role `hk` plays in the
// teacher project, here driving the Device Cache's background refresh
// (§4.2 `drive_background()`) and periodic pruning of finished copy
// operations from the progress registry (package progress).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/fcopy-dev/fcopy/cmn/nlog"
)

// NameSuffix disambiguates housekeeping job names from the xaction/op kind
// they piggy-back on, following the teacher's "<kind>"+hk.NameSuffix
// naming convention.
const NameSuffix = ".hk"

// DefaultInterval is used when Reg is called with interval == 0.
const DefaultInterval = time.Minute

// CB is a housekeeping callback: it does its work and returns the duration
// until it should run again. Returning <= 0 keeps the previous interval.
type CB func() time.Duration

type request struct {
	name     string
	f        CB
	interval time.Duration
	due      time.Time
	index    int // heap index
}

type reqHeap []*request

func (h reqHeap) Len() int            { return len(h) }
func (h reqHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h reqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *reqHeap) Push(x any)         { r := x.(*request); r.index = len(*h); *h = append(*h, r) }
func (h *reqHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

// HK is the housekeeper: a min-heap of scheduled callbacks driven by a
// single goroutine, woken either by the nearest deadline or by a
// registration/removal.
type HK struct {
	mu       sync.Mutex
	byName   map[string]*request
	pending  reqHeap
	wake     chan struct{}
	stopCh   chan struct{}
	started  chan struct{}
	startedO sync.Once
}

// DefaultHK is the process-wide housekeeper instance, constructed at
// package initialization; registered callbacks run only once
// DefaultHK.Run has been started in its own goroutine.
var DefaultHK = New()

func New() *HK {
	return &HK{
		byName:  make(map[string]*request),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		started: make(chan struct{}),
	}
}

// TestInit resets DefaultHK for a fresh test run.
func TestInit() { DefaultHK = New() }

// WaitStarted blocks until Run has begun servicing the heap.
func WaitStarted() { <-DefaultHK.started }

// Reg registers a named periodic callback on DefaultHK. Re-registering an
// existing name replaces it.
func Reg(name string, f CB, interval time.Duration) { DefaultHK.Reg(name, f, interval) }

func Unreg(name string) { DefaultHK.Unreg(name) }

func (hk *HK) Reg(name string, f CB, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &request{name: name, f: f, interval: interval, due: time.Now().Add(interval)}
	hk.mu.Lock()
	if old, ok := hk.byName[name]; ok {
		heap.Remove(&hk.pending, old.index)
	}
	hk.byName[name] = r
	heap.Push(&hk.pending, r)
	hk.mu.Unlock()
	hk.poke()
}

func (hk *HK) Unreg(name string) {
	hk.mu.Lock()
	if r, ok := hk.byName[name]; ok {
		heap.Remove(&hk.pending, r.index)
		delete(hk.byName, name)
	}
	hk.mu.Unlock()
}

func (hk *HK) poke() {
	select {
	case hk.wake <- struct{}{}:
	default:
	}
}

// Run services the heap until Stop is called. Intended to run on its own
// goroutine for the lifetime of the process (or test).
func (hk *HK) Run() {
	hk.startedO.Do(func() { close(hk.started) })
	for {
		hk.mu.Lock()
		var timer <-chan time.Time
		if len(hk.pending) > 0 {
			timer = time.After(time.Until(hk.pending[0].due))
		}
		hk.mu.Unlock()

		select {
		case <-hk.stopCh:
			return
		case <-hk.wake:
			continue
		case <-timer:
			hk.fireDue()
		}
	}
}

func (hk *HK) fireDue() {
	now := time.Now()
	for {
		hk.mu.Lock()
		if len(hk.pending) == 0 || hk.pending[0].due.After(now) {
			hk.mu.Unlock()
			return
		}
		r := heap.Pop(&hk.pending).(*request)
		hk.mu.Unlock()

		next := r.f()
		if next <= 0 {
			next = r.interval
		}
		r.due = now.Add(next)

		hk.mu.Lock()
		if _, ok := hk.byName[r.name]; ok { // not unregistered meanwhile
			heap.Push(&hk.pending, r)
		}
		hk.mu.Unlock()
	}
}

// Stop terminates Run. Safe to call once.
func (hk *HK) Stop() {
	nlog.Infoln("hk: stopping")
	close(hk.stopCh)
}
