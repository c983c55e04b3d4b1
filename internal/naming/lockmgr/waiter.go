package lockmgr

import "time"

// waiter is a single queued lock request, adapted from the teacher's
// internal/protocol/nlm/blocking.Waiter: a FIFO entry carrying what it
// wants and a channel the owner blocks on until granted.
type waiter struct {
	exclusive bool
	granted   chan struct{}
	queuedAt  time.Time
}

func newWaiter(exclusive bool) *waiter {
	return &waiter{
		exclusive: exclusive,
		granted:   make(chan struct{}),
		queuedAt:  time.Now(),
	}
}

func (w *waiter) signal() { close(w.granted) }
