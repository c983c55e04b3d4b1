package replicate

import (
	"context"
	"sync"
	"time"

	"github.com/latticefs/lattice/internal/logger"
	"github.com/latticefs/lattice/internal/naming/ledger"
	"github.com/latticefs/lattice/internal/naming/registry"
)

// DefaultThreshold is REPLICATION_THRESHOLD's default per §4.6.
const DefaultThreshold = 10

// Config configures an Engine.
type Config struct {
	// Threshold is the read count that triggers a hot-read copy.
	Threshold int
	// QueueSize bounds the number of pending tasks.
	QueueSize int
	// Workers is the number of concurrent RPC workers.
	Workers int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, QueueSize: 1000, Workers: 4}
}

// Engine is the bounded worker pool that performs replication RPCs off the
// naming service's critical section, per §5 and §9's redesign note (never
// fire-and-forget goroutines).
type Engine struct {
	client   Client
	registry *registry.Registry
	ledger   *ledger.Ledger
	metrics  *Metrics
	cfg      Config

	queue     chan Task
	workers   int
	wg        sync.WaitGroup
	stopCh    chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	started bool
	pending int

	rrMu   sync.Mutex
	rrNext int // round-robin cursor over registry.Nodes() for copy destinations
}

// NewEngine constructs an Engine. client performs the actual Storage Node
// RPCs; reg and led are the shared registry and ledger instances the naming
// service's other components also use.
func NewEngine(client Client, reg *registry.Registry, led *ledger.Ledger, metrics *Metrics, cfg Config) *Engine {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Engine{
		client:    client,
		registry:  reg,
		ledger:    led,
		metrics:   metrics,
		cfg:       cfg,
		queue:     make(chan Task, cfg.QueueSize),
		workers:   cfg.Workers,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the worker pool. Safe to call once; subsequent calls are a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	logger.Info("starting replication engine", "workers", e.workers, "threshold", e.cfg.Threshold)

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
	go func() {
		e.wg.Wait()
		close(e.stoppedCh)
	}()
}

// Stop drains pending tasks (bounded by timeout) and shuts the pool down.
func (e *Engine) Stop(timeout time.Duration) {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	close(e.stopCh)
	select {
	case <-e.stoppedCh:
		logger.Info("replication engine stopped gracefully")
	case <-time.After(timeout):
		logger.Warn("replication engine stop timed out", "pending", e.Pending())
	}
}

// Pending returns the current queue depth.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// OnRead is called synchronously, inside the caller's path-lock critical
// section, every time a file is read. It bumps the access count and, if the
// threshold is newly crossed, enqueues a copy task to a node not already
// hosting the file (round-robin over registered nodes). Enqueueing is
// non-blocking: a full queue simply skips this opportunistic replication.
func (e *Engine) OnRead(path string, primary registry.Node) {
	entry, ok := e.ledger.RecordRead(path)
	if !ok || entry.Replicated || entry.AccessCount < e.cfg.Threshold {
		return
	}
	e.ledger.ResetAccessCountTo(path, 1)

	dst, ok := e.pickReplicaTarget(entry.Hosts)
	if !ok {
		return
	}
	e.enqueue(Task{Path: path, Kind: Copy, Src: primary, Dst: dst})
}

// OnExclusiveLock is called synchronously when an exclusive lock is granted
// on path. The ledger bookkeeping (popping the last replica, decrementing
// ReplicatedCount, clearing Replicated) happens immediately inside
// ledger.InvalidateLast; only the storage_delete RPC itself is deferred to
// a worker, per §4.6's write-invalidation rule and §7's "errors are
// swallowed, best-effort" policy.
func (e *Engine) OnExclusiveLock(path string) {
	host, ok := e.ledger.InvalidateLast(path)
	if !ok {
		return
	}
	e.enqueue(Task{Path: path, Kind: Delete, Dst: host})
}

// Schedule enqueues an arbitrary task (used by the service façade's delete
// flow to fan out storage_delete commands through the same bounded pool
// rather than blocking the caller on one RPC per host).
func (e *Engine) Schedule(t Task) {
	e.enqueue(t)
}

func (e *Engine) pickReplicaTarget(hosts []registry.Node) (registry.Node, bool) {
	nodes := e.registry.Nodes()
	if len(nodes) == 0 {
		return registry.Node{}, false
	}

	hosting := make(map[registry.Node]bool, len(hosts))
	for _, h := range hosts {
		hosting[h] = true
	}

	e.rrMu.Lock()
	defer e.rrMu.Unlock()
	for i := 0; i < len(nodes); i++ {
		idx := (e.rrNext + i) % len(nodes)
		if !hosting[nodes[idx]] {
			e.rrNext = (idx + 1) % len(nodes)
			return nodes[idx], true
		}
	}
	return registry.Node{}, false
}

func (e *Engine) enqueue(t Task) {
	select {
	case e.queue <- t:
		e.mu.Lock()
		e.pending++
		e.mu.Unlock()
		e.metrics.setQueueDepth(e.Pending())
	default:
		logger.Warn("replication queue full, dropping task", "path", t.Path, "kind", t.Kind.String())
	}
}

func (e *Engine) worker(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			e.drain(ctx)
			return
		case <-ctx.Done():
			return
		case t, ok := <-e.queue:
			if !ok {
				return
			}
			e.process(ctx, t)
		}
	}
}

func (e *Engine) drain(ctx context.Context) {
	for {
		select {
		case t, ok := <-e.queue:
			if !ok {
				return
			}
			e.process(ctx, t)
		default:
			return
		}
	}
}

func (e *Engine) process(parent context.Context, t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch t.Kind {
	case Copy:
		err = e.client.Copy(ctx, t.Src, t.Dst, t.Path)
		if err == nil {
			e.ledger.AddHost(t.Path, t.Dst)
			e.registry.AddFile(t.Dst, t.Path)
		}
	case Delete:
		err = e.client.Delete(ctx, t.Dst, t.Path)
		if err == nil {
			e.registry.RemoveNodeFile(t.Dst, t.Path)
		}
	}

	e.mu.Lock()
	e.pending--
	e.mu.Unlock()
	e.metrics.setQueueDepth(e.Pending())

	if err != nil {
		e.metrics.recordTask(t.Kind, "failed")
		logger.Error("replication task failed", "path", t.Path, "kind", t.Kind.String(), "err", err)
		return
	}
	e.metrics.recordTask(t.Kind, "ok")
	logger.Debug("replication task completed", "path", t.Path, "kind", t.Kind.String())
}
