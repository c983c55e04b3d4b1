package tree

import (
	"context"

	"github.com/latticefs/lattice/internal/naming/lockmgr"
	"github.com/latticefs/lattice/internal/naming/nerr"
)

// hold records one acquired lock and the mode it was acquired in, so
// ReleasePath can release it the same way.
type hold struct {
	lock      *lockmgr.Lock
	exclusive bool
}

// Handle is the set of locks AcquirePath acquired for one request; it must
// be passed to ReleasePath exactly once.
type Handle struct {
	holds []hold
}

// AcquirePath implements §4.5's "path-effective locking": shared locks are
// acquired on every ancestor directory of components in root-to-parent
// order, then the target itself is locked shared or exclusive. If any
// ancestor or the target does not exist, already-acquired locks are
// released (bottom-up) and nerr.NotFound is returned.
func (t *Tree) AcquirePath(ctx context.Context, components []string, exclusive bool) (*Node, *Handle, error) {
	h := &Handle{}

	cur := t.root
	if len(components) == 0 {
		// The root is itself the target: honor the requested mode instead
		// of always taking it shared as an ancestor would be.
		if err := acquire(ctx, cur.Lock, exclusive); err != nil {
			return nil, nil, err
		}
		h.holds = append(h.holds, hold{cur.Lock, exclusive})
		return cur, h, nil
	}

	if err := acquire(ctx, cur.Lock, false); err != nil {
		return nil, nil, err
	}
	h.holds = append(h.holds, hold{cur.Lock, false})

	for i, c := range components {
		last := i == len(components)-1

		t.mu.Lock()
		child, ok := cur.Children[c]
		t.mu.Unlock()
		if !ok {
			t.ReleasePath(h)
			return nil, nil, nerr.New(nerr.NotFound, "path component %q not found", c)
		}

		if last {
			if err := acquire(ctx, child.Lock, exclusive); err != nil {
				t.ReleasePath(h)
				return nil, nil, err
			}
			h.holds = append(h.holds, hold{child.Lock, exclusive})
			return child, h, nil
		}

		if child.Kind != Directory {
			t.ReleasePath(h)
			return nil, nil, nerr.New(nerr.NotFound, "path component %q is not a directory", c)
		}
		if err := acquire(ctx, child.Lock, false); err != nil {
			t.ReleasePath(h)
			return nil, nil, err
		}
		h.holds = append(h.holds, hold{child.Lock, false})
		cur = child
	}

	return cur, h, nil
}

// ReleasePath releases every lock in h, bottom-up (reverse acquisition order).
func (t *Tree) ReleasePath(h *Handle) {
	for i := len(h.holds) - 1; i >= 0; i-- {
		hd := h.holds[i]
		if hd.exclusive {
			_ = hd.lock.ReleaseExclusive()
		} else {
			_ = hd.lock.ReleaseShared()
		}
	}
}

func acquire(ctx context.Context, l *lockmgr.Lock, exclusive bool) error {
	if exclusive {
		return l.AcquireExclusive(ctx)
	}
	return l.AcquireShared(ctx)
}
