// Package registry implements the Storage Node <-> file registry of §3/§4.3:
// a node -> set<path> mapping, its reverse path -> node index, and the
// registered-Storage-Node list used for create_file tie-breaking.
package registry

import (
	"sort"
	"sync"

	"github.com/latticefs/lattice/internal/naming/nerr"
)

// Node identifies a Storage Node. command_port is its identity for commands;
// the full tuple is what registration equality is compared on (§3).
type Node struct {
	StorageIP   string
	ClientPort  int
	CommandPort int
}

// Registration is the full body of a /register request (§6).
type Registration struct {
	Node  Node
	Files []string
}

// equal reports whether two registrations have identical node and file set.
func (r Registration) equal(o Registration) bool {
	if r.Node != o.Node || len(r.Files) != len(o.Files) {
		return false
	}
	a := append([]string{}, r.Files...)
	b := append([]string{}, o.Files...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Registry tracks registered Storage Nodes and their files.
type Registry struct {
	mu sync.Mutex

	registrations []Registration
	nodeFiles     map[Node]map[string]bool
	fileNode      map[string]Node // first-registered host, per §3
	globalFiles   map[string]bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		nodeFiles:   make(map[Node]map[string]bool),
		fileNode:    make(map[string]Node),
		globalFiles: make(map[string]bool),
	}
}

// Register validates reg against prior registrations and, on success,
// returns the subset of reg.Files already present in the global file set
// (the "duplicates" the Storage Node must delete locally) plus the list of
// genuinely new files the caller should materialize in the namespace tree
// and replica ledger. It fails with nerr.IllegalState if reg is an exact
// repeat of a prior registration (§4.3 step 0 / §6 409 case).
func (r *Registry) Register(reg Registration) (duplicates, newFiles []string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, prior := range r.registrations {
		if prior.equal(reg) {
			return nil, nil, nerr.New(nerr.IllegalState, "identical registration already present for %+v", reg.Node)
		}
	}

	for _, f := range reg.Files {
		if r.globalFiles[f] {
			duplicates = append(duplicates, f)
		} else {
			newFiles = append(newFiles, f)
		}
	}

	if _, ok := r.nodeFiles[reg.Node]; !ok {
		r.nodeFiles[reg.Node] = make(map[string]bool)
	}
	for _, f := range newFiles {
		r.nodeFiles[reg.Node][f] = true
		r.globalFiles[f] = true
		if _, exists := r.fileNode[f]; !exists {
			r.fileNode[f] = reg.Node
		}
	}

	r.registrations = append(r.registrations, reg)
	return duplicates, newFiles, nil
}

// PrimaryHost returns the first-registered Storage Node holding path, per
// §4.6's "selection of the primary host" (the path -> node reverse index).
func (r *Registry) PrimaryHost(path string) (Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.fileNode[path]
	return n, ok
}

// Nodes returns every distinct registered Storage Node, in first-seen order,
// for create_file's round-robin tie-breaking and replication destination
// selection.
func (r *Registry) Nodes() []Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[Node]bool)
	var out []Node
	for _, reg := range r.registrations {
		if !seen[reg.Node] {
			seen[reg.Node] = true
			out = append(out, reg.Node)
		}
	}
	return out
}

// AddFile records that node now hosts path; used when create_file picks a
// node and the storage_create RPC succeeds, and when an initial registration
// introduces a brand-new file.
func (r *Registry) AddFile(node Node, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodeFiles[node]; !ok {
		r.nodeFiles[node] = make(map[string]bool)
	}
	r.nodeFiles[node][path] = true
	r.globalFiles[path] = true
	if _, exists := r.fileNode[path]; !exists {
		r.fileNode[path] = node
	}
}

// RemoveNodeFile clears path from node's file set only, leaving the global
// file set and reverse index untouched. Used after a successful
// storage_delete invalidation RPC against a secondary replica.
func (r *Registry) RemoveNodeFile(node Node, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if files, ok := r.nodeFiles[node]; ok {
		delete(files, path)
	}
}

// RemoveFile clears path from the registry entirely (node membership, the
// reverse index, and the global file set), used by delete.
func (r *Registry) RemoveFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for node := range r.nodeFiles {
		delete(r.nodeFiles[node], path)
	}
	delete(r.fileNode, path)
	delete(r.globalFiles, path)
}

// HasFile reports whether path is in the global file set.
func (r *Registry) HasFile(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.globalFiles[path]
}

// Size returns the number of distinct registered Storage Nodes, reported
// by /debug/status.
func (r *Registry) Size() int {
	return len(r.Nodes())
}
