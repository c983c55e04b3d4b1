// Package replicate implements the replication engine of §4.6: hot-read
// replication triggered once a file's read count crosses
// REPLICATION_THRESHOLD, and write-invalidation triggered when an exclusive
// lock is granted on an already-replicated file.
package replicate

import (
	"context"

	"github.com/latticefs/lattice/internal/naming/registry"
)

// Kind distinguishes the two RPCs the engine ever schedules.
type Kind int

const (
	// Copy asks Dst to pull path from Src (storage_copy, destination-initiated).
	Copy Kind = iota
	// Delete asks Dst to drop its local copy of path (storage_delete).
	Delete
)

func (k Kind) String() string {
	if k == Copy {
		return "copy"
	}
	return "delete"
}

// Task is one unit of replication work.
type Task struct {
	Path string
	Kind Kind
	Src  registry.Node // unused for Delete
	Dst  registry.Node
}

// Client is the RPC surface the engine needs against a Storage Node's
// command port. A concrete HTTP implementation lives in package
// storageclient; tests use a fake.
type Client interface {
	Copy(ctx context.Context, src, dst registry.Node, path string) error
	Delete(ctx context.Context, node registry.Node, path string) error
}
