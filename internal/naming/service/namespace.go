package service

import (
	"context"

	"github.com/latticefs/lattice/internal/naming/nerr"
	npath "github.com/latticefs/lattice/internal/naming/path"
	"github.com/latticefs/lattice/internal/naming/registry"
	"github.com/latticefs/lattice/internal/naming/replicate"
	"github.com/latticefs/lattice/internal/naming/tree"
)

// IsValidPath reports whether p satisfies §4.1's syntactic rules. It never
// touches the namespace.
func (s *Service) IsValidPath(p string) bool {
	_, _, err := canon(p)
	return err == nil
}

// GetStorage returns the primary (first-registered) host for the file at p.
func (s *Service) GetStorage(p string) (registry.Node, error) {
	_, canonical, err := canon(p)
	if err != nil {
		return registry.Node{}, err
	}
	node, ok := s.registry.PrimaryHost(canonical)
	if !ok {
		return registry.Node{}, nerr.New(nerr.NotFound, "no storage node hosts %q", canonical)
	}
	return node, nil
}

// IsDirectory mirrors tree.Tree.IsDirectory over a validated path.
func (s *Service) IsDirectory(p string) (npath.Result, error) {
	components, _, err := canon(p)
	if err != nil {
		return npath.NotFound, err
	}
	return s.tree.IsDirectory(components), nil
}

// IsFile mirrors tree.Tree.IsFile over a validated path.
func (s *Service) IsFile(p string) (npath.Result, error) {
	components, _, err := canon(p)
	if err != nil {
		return npath.NotFound, err
	}
	return s.tree.IsFile(components), nil
}

// List mirrors tree.Tree.List over a validated path.
func (s *Service) List(p string) ([]string, npath.Result, error) {
	components, _, err := canon(p)
	if err != nil {
		return nil, npath.NotFound, err
	}
	names, res := s.tree.List(components)
	return names, res, nil
}

// CreateDirectory inserts an empty directory at p, holding the parent's
// exclusive lock for the duration (§4.2/§4.5).
func (s *Service) CreateDirectory(ctx context.Context, p string) (bool, error) {
	components, _, err := canon(p)
	if err != nil {
		return false, err
	}
	if len(components) == 0 {
		return false, nil // root always exists
	}

	_, handle, err := s.tree.AcquirePath(ctx, npath.Parent(components), true)
	if err != nil {
		return false, err
	}
	defer s.tree.ReleasePath(handle)

	ok, _ := s.tree.CreateDirectory(components)
	return ok, nil
}

// CreateFile inserts a new file at p. It picks a registered Storage Node
// (round-robin), blocks on storage_create, and commits the tree/ledger
// entries only if the node confirms — §7's "MUST NOT leak a file the node
// refused to materialize".
func (s *Service) CreateFile(ctx context.Context, p string) (bool, error) {
	components, canonical, err := canon(p)
	if err != nil {
		return false, err
	}
	if len(components) == 0 {
		return false, nil
	}

	_, handle, err := s.tree.AcquirePath(ctx, npath.Parent(components), true)
	if err != nil {
		return false, err
	}
	defer s.tree.ReleasePath(handle)

	node, ok := s.nextNode()
	if !ok {
		return false, nerr.New(nerr.NotFound, "no storage nodes registered")
	}

	confirmed, err := s.client.Create(ctx, node, canonical)
	if err != nil || !confirmed {
		return false, nil
	}

	if ok, _ := s.tree.CreateFileNode(components); !ok {
		return false, nil
	}
	_ = s.ledger.Create(canonical, node)
	s.registry.AddFile(node, canonical)
	return true, nil
}

// Delete removes the node at p. For a file it commands every hosting
// Storage Node to drop its copy; for a directory it recurses over every
// file beneath it first. The root can never be deleted (§4.2).
func (s *Service) Delete(ctx context.Context, p string) (bool, error) {
	components, canonical, err := canon(p)
	if err != nil {
		return false, err
	}
	if len(components) == 0 {
		return false, nil
	}

	_, handle, err := s.tree.AcquirePath(ctx, npath.Parent(components), true)
	if err != nil {
		return false, err
	}
	defer s.tree.ReleasePath(handle)

	target, _, res := s.tree.Walk(components)
	if target == nil || res != npath.Yes {
		return false, nerr.New(nerr.NotFound, "%q does not exist", canonical)
	}

	if target.Kind == tree.File {
		s.scheduleDeleteCommands(canonical)
	} else {
		for _, f := range s.tree.Files(components) {
			s.scheduleDeleteCommands(f)
		}
	}

	s.tree.Delete(components)
	return true, nil
}

// scheduleDeleteCommands fans out a storage_delete command (through the
// replication engine's shared worker pool) to every host of path, then
// clears its registry and ledger state.
func (s *Service) scheduleDeleteCommands(path string) {
	if entry, ok := s.ledger.Get(path); ok {
		for _, host := range entry.Hosts {
			s.replica.Schedule(replicate.Task{Path: path, Kind: replicate.Delete, Dst: host})
		}
	}
	s.registry.RemoveFile(path)
	s.ledger.Remove(path)
}

func (s *Service) nextNode() (registry.Node, bool) {
	nodes := s.registry.Nodes()
	if len(nodes) == 0 {
		return registry.Node{}, false
	}
	s.rrMu.Lock()
	defer s.rrMu.Unlock()
	n := nodes[s.rrNext%len(nodes)]
	s.rrNext++
	return n, true
}
