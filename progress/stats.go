// Package progress aggregates per-file progress deltas into a live
// ProgressSample and a final CopyStats record, and maintains the registry
// of in-flight copy operations that subscribe_progress/cancel address by
// operation id.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package progress

import (
	"sync"
	"time"

	"github.com/fcopy-dev/fcopy/cmn/cos"
)

// DefaultInterval is how often the aggregator emits a ProgressSample,
// collapsing intermediate deltas (§4.8).
const DefaultInterval = 200 * time.Millisecond

// ewmaWindow is the ~5s window the transfer-rate EWMA is computed over.
const ewmaWindow = 5 * time.Second

// minRateSamples is how many rate samples must land before eta is defined
// (§3 ProgressSample.eta).
const minRateSamples = 5

// CopyStats is the final record handed back from copy_file/copy_tree.
type CopyStats struct {
	FilesCopied        int64
	DirectoriesCreated int64
	BytesCopied        int64
	FilesSkipped       int64
	Errors             int64
	Duration           time.Duration
	ZeroCopyOps        int64
	ZeroCopyBytes      int64
}

func (s CopyStats) TransferRate() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.BytesCopied) / s.Duration.Seconds()
}

func (s CopyStats) ZeroCopyEfficiency() float64 {
	if s.BytesCopied == 0 {
		return 0
	}
	return float64(s.ZeroCopyBytes) / float64(s.BytesCopied)
}

// ProgressSample is the live snapshot emitted to subscribers.
type ProgressSample struct {
	CurrentPath    string
	FileBytesDone  int64
	FileBytesTotal int64
	TreeBytesDone  int64
	TreeBytesTotal int64
	TreeFilesDone  int64
	TreeFilesTotal int64
	TransferRate   float64 // bytes/sec, EWMA
	ETA            time.Duration
	ETADefined     bool
}

// delta is what a worker posts through the aggregator's non-blocking
// channel after completing a unit of work.
type delta struct {
	path          string
	fileBytesDone int64
	bytesAdded    int64
	fileDone      bool
	dirCreated    bool
	err           error
	skipped       bool
	zeroCopyBytes int64
	zeroCopyOp    bool
}

// Aggregator owns the mutable counters for one copy_tree/copy_file
// operation; workers post deltas through PostDelta (non-blocking) and a
// single background goroutine folds them into CopyStats/ProgressSample.
type Aggregator struct {
	mu sync.Mutex

	treeBytesTotal int64
	treeFilesTotal int64

	treeBytesDone int64
	treeFilesDone int64
	filesSkipped  int64
	errs          cos.Errs
	dirsCreated   int64
	zcOps         int64
	zcBytes       int64
	currentPath   string
	fileBytesDone int64
	fileBytesTot  int64

	rateSamples []rateSample
	started     time.Time

	deltas chan delta
	stopCh chan struct{}
	subs   []chan ProgressSample
}

type rateSample struct {
	at    time.Time
	bytes int64
}

func NewAggregator(treeBytesTotal, treeFilesTotal int64) *Aggregator {
	a := &Aggregator{
		treeBytesTotal: treeBytesTotal,
		treeFilesTotal: treeFilesTotal,
		deltas:         make(chan delta, 256),
		stopCh:         make(chan struct{}),
		started:        time.Now(),
	}
	go a.run()
	return a
}

func (a *Aggregator) PostDelta(d delta) {
	select {
	case a.deltas <- d:
	default:
		// queue full: fold synchronously rather than drop, keeping the
		// monotonic tree_bytes_done guarantee (§5 Ordering guarantees).
		a.mu.Lock()
		a.apply(d)
		a.mu.Unlock()
	}
}

// PostFileBytes reports incremental progress within the current file.
func (a *Aggregator) PostFileBytes(path string, done, total, added int64) {
	a.PostDelta(delta{path: path, fileBytesDone: done, bytesAdded: added})
}

func (a *Aggregator) PostFileDone(bytesAdded int64) {
	a.PostDelta(delta{fileDone: true, bytesAdded: bytesAdded})
}

func (a *Aggregator) PostDirCreated() { a.PostDelta(delta{dirCreated: true}) }
func (a *Aggregator) PostSkipped()    { a.PostDelta(delta{skipped: true}) }

// PostError records a failed file/directory operation. err must be
// non-nil; the aggregator keeps up to cos.Errs's bounded sample of
// distinct errors, and Finalize's CopyStats.Errors is the number of
// distinct errors kept (repeats of the same error and errors past the
// bound are not counted).
func (a *Aggregator) PostError(err error) { a.PostDelta(delta{err: err}) }
func (a *Aggregator) PostZeroCopy(bytesMoved int64) {
	a.PostDelta(delta{zeroCopyOp: true, zeroCopyBytes: bytesMoved, bytesAdded: bytesMoved})
}

func (a *Aggregator) run() {
	ticker := time.NewTicker(DefaultInterval)
	defer ticker.Stop()
	for {
		select {
		case d := <-a.deltas:
			a.mu.Lock()
			a.apply(d)
			a.mu.Unlock()
		case <-ticker.C:
			a.emit()
		case <-a.stopCh:
			return
		}
	}
}

// apply folds d into the mutable counters. Caller holds a.mu.
func (a *Aggregator) apply(d delta) {
	if d.path != "" {
		a.currentPath = d.path
		a.fileBytesDone = d.fileBytesDone
	}
	if d.bytesAdded > 0 {
		a.treeBytesDone += d.bytesAdded
		a.rateSamples = append(a.rateSamples, rateSample{at: time.Now(), bytes: a.treeBytesDone})
		a.pruneRateSamplesLocked()
	}
	if d.fileDone {
		a.treeFilesDone++
	}
	if d.dirCreated {
		a.dirsCreated++
	}
	if d.skipped {
		a.filesSkipped++
	}
	if d.err != nil {
		a.errs.Add(d.err)
	}
	if d.zeroCopyOp {
		a.zcOps++
		a.zcBytes += d.zeroCopyBytes
	}
}

func (a *Aggregator) pruneRateSamplesLocked() {
	cutoff := time.Now().Add(-ewmaWindow)
	i := 0
	for ; i < len(a.rateSamples); i++ {
		if a.rateSamples[i].at.After(cutoff) {
			break
		}
	}
	a.rateSamples = a.rateSamples[i:]
}

// rateLocked computes the EWMA-style transfer rate over the retained
// window: bytes moved since the oldest retained sample, divided by
// elapsed wall time. Caller holds a.mu.
func (a *Aggregator) rateLocked() float64 {
	if len(a.rateSamples) < 2 {
		return 0
	}
	first, last := a.rateSamples[0], a.rateSamples[len(a.rateSamples)-1]
	elapsed := last.at.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(last.bytes-first.bytes) / elapsed
}

func (a *Aggregator) emit() {
	a.mu.Lock()
	sample := ProgressSample{
		CurrentPath:    a.currentPath,
		FileBytesDone:  a.fileBytesDone,
		FileBytesTotal: a.fileBytesTot,
		TreeBytesDone:  a.treeBytesDone,
		TreeBytesTotal: a.treeBytesTotal,
		TreeFilesDone:  a.treeFilesDone,
		TreeFilesTotal: a.treeFilesTotal,
		TransferRate:   a.rateLocked(),
	}
	if len(a.rateSamples) >= minRateSamples && sample.TransferRate > 0 {
		remaining := sample.TreeBytesTotal - sample.TreeBytesDone
		sample.ETA = time.Duration(float64(remaining) / sample.TransferRate * float64(time.Second))
		sample.ETADefined = true
	}
	subs := append([]chan ProgressSample(nil), a.subs...)
	a.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- sample:
		default:
		}
	}
}

// Subscribe returns a channel of ProgressSample, delivered at most every
// DefaultInterval. The channel is buffered by 1 and drops samples a slow
// subscriber hasn't drained, per §4.8's collapsing semantics.
func (a *Aggregator) Subscribe() <-chan ProgressSample {
	ch := make(chan ProgressSample, 1)
	a.mu.Lock()
	a.subs = append(a.subs, ch)
	a.mu.Unlock()
	return ch
}

// Finalize stops the aggregator and returns the terminal CopyStats.
func (a *Aggregator) Finalize() CopyStats {
	// the send completes only once run is back at its select, so run holds
	// no half-applied delta when it returns
	a.stopCh <- struct{}{}
	a.mu.Lock()
	defer a.mu.Unlock()
	for drained := false; !drained; {
		select {
		case d := <-a.deltas:
			a.apply(d)
		default:
			drained = true
		}
	}
	return CopyStats{
		FilesCopied:        a.treeFilesDone,
		DirectoriesCreated: a.dirsCreated,
		BytesCopied:        a.treeBytesDone,
		FilesSkipped:       a.filesSkipped,
		Errors:             int64(a.errs.Cnt()),
		Duration:           time.Since(a.started),
		ZeroCopyOps:        a.zcOps,
		ZeroCopyBytes:      a.zcBytes,
	}
}
