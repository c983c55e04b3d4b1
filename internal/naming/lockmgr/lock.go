// Package lockmgr implements the fair reader/writer lock protocol of §4.5:
// a per-node state machine with a FIFO waiter queue, generalized from the
// teacher's internal/protocol/nlm/blocking package (BlockingQueue/Waiter)
// from NLM's per-file byte-range locks to this spec's whole-resource
// (directory or file) locks, with the root's S/Q/E fairness structures
// layered on top for writer-preference at the one node every request
// traverses.
package lockmgr

import (
	"context"
	"sync"

	"github.com/latticefs/lattice/internal/naming/nerr"
)

// Manager creates locks and counts how many it has created.
// It carries no per-lock state itself; every Lock is independent.
type Manager struct {
	mu    sync.Mutex
	locks int // count of locks ever created; never decremented
}

// NewManager returns an empty lock manager.
func NewManager() *Manager {
	return &Manager{}
}

// NewLock returns a fresh, unheld per-node lock.
func (m *Manager) NewLock() *Lock {
	m.mu.Lock()
	m.locks++
	m.mu.Unlock()
	return &Lock{}
}

// NewRootLock returns a fresh, unheld lock with the root's S/Q/E
// fairness structures enabled (§4.5 "Root operation").
func (m *Manager) NewRootLock() *Lock {
	l := m.NewLock()
	l.isRoot = true
	return l
}

// LiveLocks returns the number of locks this manager has ever created,
// reported by /debug/status.
func (m *Manager) LiveLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks
}

// Lock is one node's R/W lock state (§4.5's "State machine per lock"):
// Free -> SharedHeld(n) -> ExclusiveHeld -> Free. Non-root locks use a
// single FIFO waiter queue; the root additionally tracks S (active shared
// holders) and routes writers that arrive while S > 0 into a priority
// side-queue E ahead of the general queue Q, per the spec's root algorithm.
type Lock struct {
	mu sync.Mutex

	isRoot bool

	sharedCount      int
	exclusiveHeld    bool
	exclusiveWaiting int     // non-root: number of exclusive waiters queued
	queue            []*waiter // non-root: FIFO queue (Q, for root)
	sideQueue        []*waiter // root only: E, exclusive arrivals while S > 0
}

// AcquireShared blocks until a shared hold is granted, or ctx is done.
func (l *Lock) AcquireShared(ctx context.Context) error {
	l.mu.Lock()

	if l.isRoot {
		return l.rootAcquire(ctx, false)
	}

	if !l.exclusiveHeld && l.exclusiveWaiting == 0 {
		l.sharedCount++
		l.mu.Unlock()
		return nil
	}

	w := newWaiter(false)
	l.queue = append(l.queue, w)
	l.mu.Unlock()
	return waitFor(ctx, w)
}

// AcquireExclusive blocks until an exclusive hold is granted, or ctx is done.
func (l *Lock) AcquireExclusive(ctx context.Context) error {
	l.mu.Lock()

	if l.isRoot {
		return l.rootAcquire(ctx, true)
	}

	if !l.exclusiveHeld && l.sharedCount == 0 && len(l.queue) == 0 {
		l.exclusiveHeld = true
		l.mu.Unlock()
		return nil
	}

	w := newWaiter(true)
	l.exclusiveWaiting++
	l.queue = append(l.queue, w)
	l.mu.Unlock()
	return waitFor(ctx, w)
}

// ReleaseShared releases one shared hold and wakes the next eligible
// waiter(s), per §4.5's release_shared transition.
func (l *Lock) ReleaseShared() error {
	l.mu.Lock()

	if l.isRoot {
		return l.rootReleaseShared()
	}

	if l.sharedCount == 0 {
		l.mu.Unlock()
		return nerr.New(nerr.InvalidArgument, "release_shared on a lock with no shared holders")
	}
	l.sharedCount--
	if l.sharedCount == 0 {
		l.drainQueue()
	}
	l.mu.Unlock()
	return nil
}

// ReleaseExclusive releases the exclusive hold and wakes the next eligible
// waiter(s), per §4.5's release_exclusive transition.
func (l *Lock) ReleaseExclusive() error {
	l.mu.Lock()

	if l.isRoot {
		return l.rootReleaseExclusive()
	}

	if !l.exclusiveHeld {
		l.mu.Unlock()
		return nerr.New(nerr.InvalidArgument, "release_exclusive on a lock not exclusively held")
	}
	l.exclusiveHeld = false
	l.drainQueue()
	l.mu.Unlock()
	return nil
}

// drainQueue grants the next run of compatible waiters at the front of the
// queue: a contiguous run of shared waiters, or a single exclusive waiter.
// Caller holds l.mu.
func (l *Lock) drainQueue() {
	for len(l.queue) > 0 {
		front := l.queue[0]
		if front.exclusive {
			l.queue = l.queue[1:]
			l.exclusiveWaiting--
			l.exclusiveHeld = true
			front.signal()
			return
		}
		l.queue = l.queue[1:]
		l.sharedCount++
		front.signal()
		// Keep granting shared waiters while the next front is also
		// shared; stop at the first exclusive waiter so it isn't
		// starved by a run of readers behind it (it was already queued
		// ahead of them).
		if len(l.queue) == 0 || l.queue[0].exclusive {
			return
		}
	}
}

// QueueDepth returns the number of waiters currently queued on this lock
// (for the root, Q and E together).
func (l *Lock) QueueDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) + len(l.sideQueue)
}

func waitFor(ctx context.Context, w *waiter) error {
	select {
	case <-w.granted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
