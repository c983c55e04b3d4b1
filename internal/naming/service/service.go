// Package service is the Naming Service's façade (C7): it composes C1–C6
// into the operations §6 exposes over HTTP. There is no process-wide mutex:
// the tree, registry, ledger and lock manager each guard their own state
// with their own mutex.
package service

import (
	"context"
	"sync"

	"github.com/latticefs/lattice/internal/naming/ledger"
	"github.com/latticefs/lattice/internal/naming/lockmgr"
	npath "github.com/latticefs/lattice/internal/naming/path"
	"github.com/latticefs/lattice/internal/naming/registry"
	"github.com/latticefs/lattice/internal/naming/replicate"
	"github.com/latticefs/lattice/internal/naming/tree"
)

// StorageCommandClient is the RPC surface used directly by the service
// (create_file's storage_create), distinct from replicate.Client which
// covers copy/delete — the two overlap on Delete, satisfied by the same
// storageclient.Client.
type StorageCommandClient interface {
	replicate.Client
	Create(ctx context.Context, node registry.Node, path string) (bool, error)
}

// Service is the Naming Service. It is safe for concurrent use; every
// exported method is one logical client request and may block inside the
// lock manager.
type Service struct {
	tree     *tree.Tree
	lm       *lockmgr.Manager
	registry *registry.Registry
	ledger   *ledger.Ledger
	client   StorageCommandClient
	replica  *replicate.Engine

	// locksMu/heldLocks track outstanding /lock..../unlock pairs: the lock
	// and unlock endpoints are two separate RPCs, unlike every other
	// operation's self-contained acquire/release. The protocol carries no
	// client token, so a path can accumulate more than one outstanding
	// holder (N concurrent shared lockers, say); each Lock call appends its
	// handle and each Unlock call pops one, so N acquisitions require N
	// releases before the path is considered unlocked.
	locksMu   sync.Mutex
	heldLocks map[string][]*tree.Handle

	rrMu   sync.Mutex
	rrNext int // round-robin cursor for create_file's node tie-breaking
}

// New constructs a Service over a fresh, empty namespace. reg and led must be
// the same registry.Registry and ledger.Ledger instances replica was built
// against (replicate.NewEngine takes both by reference) — the service and
// the replication engine observe and mutate one shared registry/ledger, not
// two independent copies.
func New(client StorageCommandClient, reg *registry.Registry, led *ledger.Ledger, replica *replicate.Engine) *Service {
	lm := lockmgr.NewManager()
	return &Service{
		tree:      tree.New(lm),
		lm:        lm,
		registry:  reg,
		ledger:    led,
		client:    client,
		replica:   replica,
		heldLocks: make(map[string][]*tree.Handle),
	}
}

// canon validates p and returns both its component list (for tree
// operations) and its canonical "/"-joined string (for registry/ledger
// keys), so every component keeps a single source of truth for path
// normalization (§4.1).
func canon(p string) (components []string, canonical string, err error) {
	components, err = npath.Validate(p)
	if err != nil {
		return nil, "", err
	}
	return components, npath.Join(components), nil
}
