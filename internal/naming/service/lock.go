package service

import (
	"context"

	"github.com/latticefs/lattice/internal/naming/nerr"
	"github.com/latticefs/lattice/internal/naming/tree"
)

// Lock acquires a shared or exclusive lock on p (with the ancestor-chain
// shared locks §4.5 requires) and holds it until a matching Unlock call.
// Once granted on a file, it triggers the replication engine's hot-read or
// write-invalidation hook (§4.6).
func (s *Service) Lock(ctx context.Context, p string, exclusive bool) error {
	components, canonical, err := canon(p)
	if err != nil {
		return err
	}

	node, handle, err := s.tree.AcquirePath(ctx, components, exclusive)
	if err != nil {
		return err
	}

	s.locksMu.Lock()
	s.heldLocks[canonical] = append(s.heldLocks[canonical], handle)
	s.locksMu.Unlock()

	if node.Kind == tree.File {
		if exclusive {
			s.replica.OnExclusiveLock(canonical)
		} else if primary, ok := s.registry.PrimaryHost(canonical); ok {
			s.replica.OnRead(canonical, primary)
		}
	}
	return nil
}

// Unlock releases one outstanding lock a prior Lock call acquired on p. The
// protocol carries no client token, so Unlock releases whichever handle was
// acquired least recently for p; N concurrent Lock calls on the same path
// require N Unlock calls to fully drain it. Unlocking a path with no
// outstanding lock is a client bug (§4.5): nerr.InvalidArgument.
func (s *Service) Unlock(p string) error {
	_, canonical, err := canon(p)
	if err != nil {
		return err
	}

	s.locksMu.Lock()
	handles, ok := s.heldLocks[canonical]
	var handle *tree.Handle
	if ok && len(handles) > 0 {
		handle = handles[0]
		handles = handles[1:]
		if len(handles) == 0 {
			delete(s.heldLocks, canonical)
		} else {
			s.heldLocks[canonical] = handles
		}
	} else {
		ok = false
	}
	s.locksMu.Unlock()

	if !ok {
		return nerr.New(nerr.InvalidArgument, "unlock on %q, which was never locked", canonical)
	}
	s.tree.ReleasePath(handle)
	return nil
}
