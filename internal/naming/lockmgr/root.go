package lockmgr

import "context"

// Root-specific lock algorithm (§4.5 "Root operation"). The root tracks S
// (sharedCount, reused from the generic Lock fields) and exclusiveHeld as
// before, but routes queueing differently: an exclusive arrival while S > 0
// joins the side-queue E (sideQueue) instead of the general queue Q (queue),
// so that once the last reader drains, a waiting writer is signaled ahead of
// anything else in Q. Everything else behaves like the generic lock.
//
// Caller holds l.mu on entry to every method here; each releases it before
// returning, matching the calling convention in lock.go.

func (l *Lock) rootAcquire(ctx context.Context, exclusive bool) error {
	free := !l.exclusiveHeld && l.sharedCount == 0

	if exclusive {
		if free {
			l.exclusiveHeld = true
			l.mu.Unlock()
			return nil
		}
		if l.sharedCount > 0 && !l.exclusiveHeld {
			// Readers are active: join the priority writer side-queue.
			w := newWaiter(true)
			l.sideQueue = append(l.sideQueue, w)
			l.mu.Unlock()
			return waitFor(ctx, w)
		}
		// exclusiveHeld: join the general queue like any other request.
		w := newWaiter(true)
		l.queue = append(l.queue, w)
		l.mu.Unlock()
		return waitFor(ctx, w)
	}

	// Shared request: granted immediately unless a writer is already
	// waiting in the side-queue (writer-preference) or the root is
	// exclusively held.
	if !l.exclusiveHeld && len(l.sideQueue) == 0 {
		l.sharedCount++
		l.mu.Unlock()
		return nil
	}
	w := newWaiter(false)
	l.queue = append(l.queue, w)
	l.mu.Unlock()
	return waitFor(ctx, w)
}

func (l *Lock) rootReleaseShared() error {
	l.sharedCount--
	if l.sharedCount == 0 {
		l.rootDrain()
	}
	l.mu.Unlock()
	return nil
}

func (l *Lock) rootReleaseExclusive() error {
	l.exclusiveHeld = false
	l.rootDrain()
	l.mu.Unlock()
	return nil
}

// rootDrain implements "when S reaches zero, the front of E is signaled
// first; if E is empty, the front of Q is signaled; if both empty, the root
// is fully released." Caller holds l.mu.
func (l *Lock) rootDrain() {
	if len(l.sideQueue) > 0 {
		w := l.sideQueue[0]
		l.sideQueue = l.sideQueue[1:]
		l.exclusiveHeld = true
		w.signal()
		return
	}
	if len(l.queue) == 0 {
		return
	}
	front := l.queue[0]
	if front.exclusive {
		l.queue = l.queue[1:]
		l.exclusiveHeld = true
		front.signal()
		return
	}
	// Grant a contiguous run of shared waiters from the front of Q.
	for len(l.queue) > 0 && !l.queue[0].exclusive {
		w := l.queue[0]
		l.queue = l.queue[1:]
		l.sharedCount++
		w.signal()
	}
}
