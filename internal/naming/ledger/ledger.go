// Package ledger implements the replica ledger of §3/§4.4/§4.6: per-file
// records of which Storage Nodes hold a copy, how many times it has been
// read since the last replica event, and whether it currently counts as
// replicated.
package ledger

import (
	"sync"

	"github.com/latticefs/lattice/internal/naming/nerr"
	"github.com/latticefs/lattice/internal/naming/registry"
)

// Entry is the per-file replica record. Hosts preserves insertion order: the
// first element is always the primary (first-registered) host.
//
// ReplicatedCount and Replicated are independent, explicitly stored fields
// rather than derived from len(Hosts) — §4.6's write-invalidation flips
// Replicated to false on every invalidation pass even when a second replica
// still remains, which is how the reference design keeps invalidation a
// single bounded step per exclusive lock rather than a full drain.
type Entry struct {
	Hosts           []registry.Node
	AccessCount     int
	ReplicatedCount int
	Replicated      bool
}

// Ledger is the path -> Entry map, guarded by its own mutex so it can be
// consulted independently of the tree/registry/lock-manager mutex.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

// Create adds a new entry for path with primary as its sole host. It is an
// error (IllegalState) to create an entry that already exists.
func (l *Ledger) Create(path string, primary registry.Node) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[path]; ok {
		return nerr.New(nerr.IllegalState, "ledger entry for %q already exists", path)
	}
	l.entries[path] = &Entry{Hosts: []registry.Node{primary}}
	return nil
}

// Remove deletes the entry for path, used on delete.
func (l *Ledger) Remove(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, path)
}

// RecordRead increments path's access count and returns a snapshot of the
// entry (copied, safe to inspect without further locking).
func (l *Ledger) RecordRead(path string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[path]
	if !ok {
		return Entry{}, false
	}
	e.AccessCount++
	return l.snapshot(e), true
}

// ResetAccessCountTo sets path's access counter to n, called once a hot-read
// copy has been scheduled (§4.6 resets to 1, counting the triggering read
// as the first of the next epoch).
func (l *Ledger) ResetAccessCountTo(path string, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[path]; ok {
		e.AccessCount = n
	}
}

// AddHost appends node to path's host list after a successful storage_copy,
// marks the entry replicated, and bumps ReplicatedCount. No-op if node is
// already listed.
func (l *Ledger) AddHost(path string, node registry.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[path]
	if !ok {
		return
	}
	for _, h := range e.Hosts {
		if h == node {
			return
		}
	}
	e.Hosts = append(e.Hosts, node)
	e.ReplicatedCount++
	e.Replicated = true
}

// InvalidateLast implements §4.6's write-invalidation step: if the entry is
// replicated and ReplicatedCount > 1, it pops the last host off Hosts,
// decrements ReplicatedCount, and clears Replicated — unconditionally, a
// single bounded step per exclusive lock rather than a full drain, so a file
// with exactly one extra replica (ReplicatedCount == 1) keeps that replica
// indefinitely (the "floor 1" of §8 property 8). The popped host is
// returned so the caller can fire the storage_delete RPC; the ledger
// mutation itself is unconditional (best-effort, per §7 — invalidation
// errors are swallowed, never retried against ledger state).
func (l *Ledger) InvalidateLast(path string) (registry.Node, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[path]
	if !ok || !e.Replicated || e.ReplicatedCount <= 1 {
		return registry.Node{}, false
	}
	last := e.Hosts[len(e.Hosts)-1]
	e.Hosts = e.Hosts[:len(e.Hosts)-1]
	e.ReplicatedCount--
	e.Replicated = false
	return last, true
}

// Get returns a copy of path's entry.
func (l *Ledger) Get(path string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[path]
	if !ok {
		return Entry{}, false
	}
	return l.snapshot(e), true
}

// Snapshot returns a copy of every path's entry, keyed by path, for
// operator-facing status reporting.
func (l *Ledger) Snapshot() map[string]Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]Entry, len(l.entries))
	for path, e := range l.entries {
		out[path] = l.snapshot(e)
	}
	return out
}

func (l *Ledger) snapshot(e *Entry) Entry {
	return Entry{
		Hosts:           append([]registry.Node{}, e.Hosts...),
		AccessCount:     e.AccessCount,
		ReplicatedCount: e.ReplicatedCount,
		Replicated:      e.Replicated,
	}
}
