// Package tree implements the namespace tree (§3, §4.2): an in-memory,
// tagged-variant directory/file tree. Per §9's redesign note, directory
// children live in their own map so lock state never shares a namespace
// with child names, unlike the Python source's single nested dict.
package tree

import (
	"sync"

	"github.com/latticefs/lattice/internal/naming/lockmgr"
	"github.com/latticefs/lattice/internal/naming/path"
)

// Kind tags a Node as either a directory or a file.
type Kind int

const (
	// Directory holds named children.
	Directory Kind = iota
	// File holds a reference into the replica ledger (by full path).
	File
)

// Node is one entry in the namespace tree. Every node except the root has
// exactly one parent; a name within a directory denotes either a file xor a
// sub-directory, per §3's invariant.
type Node struct {
	Kind     Kind
	Name     string
	Parent   *Node
	Lock     *lockmgr.Lock // DirLock or FileLock depending on Kind
	Children map[string]*Node
}

func newDirectory(name string, parent *Node, lm *lockmgr.Manager) *Node {
	return &Node{
		Kind:     Directory,
		Name:     name,
		Parent:   parent,
		Lock:     lm.NewLock(),
		Children: make(map[string]*Node),
	}
}

func newFile(name string, parent *Node, lm *lockmgr.Manager) *Node {
	return &Node{
		Kind:   File,
		Name:   name,
		Parent: parent,
		Lock:   lm.NewLock(),
	}
}

// Tree is the namespace tree rooted at "/". Tree serializes access to its
// nodes with its own mutex; the naming service has no process-wide mutex
// over the tree, registry and ledger together.
type Tree struct {
	root *Node
	lm   *lockmgr.Manager

	// mu protects every directory's Children map.
	mu sync.Mutex
}

// New creates an empty tree with an eternal root directory. The root's lock
// uses the §4.5 root fairness algorithm (lockmgr.NewRootLock), not the
// generic per-node lock every other node gets, since the root is the one
// node every request's ancestor-chain walk traverses.
func New(lm *lockmgr.Manager) *Tree {
	t := &Tree{lm: lm}
	t.root = &Node{Kind: Directory, Name: "", Lock: lm.NewRootLock(), Children: make(map[string]*Node)}
	t.root.Parent = nil
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Walk descends the tree along components, returning the resolved node, or
// (nil, parent, NotFound) naming the deepest existing ancestor — per §4.1,
// the deepest-prefix marker callers need to decide create vs. not-found.
func (t *Tree) Walk(components []string) (node, deepestParent *Node, result path.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	for i, c := range components {
		child, ok := cur.Children[c]
		if !ok {
			return nil, cur, path.NotFound
		}
		if child.Kind != Directory && i != len(components)-1 {
			// A path component resolved to a file but more components
			// remain beneath it: no such node.
			return nil, child, path.NotFound
		}
		cur = child
	}
	return cur, cur.Parent, path.Yes
}

// Exists reports whether components resolves to any node.
func (t *Tree) Exists(components []string) bool {
	node, _, _ := t.Walk(components)
	return node != nil
}

// IsDirectory returns Yes if components resolves to a directory (root
// included), No if it resolves to a file, NotFound otherwise.
func (t *Tree) IsDirectory(components []string) path.Result {
	node, _, _ := t.Walk(components)
	if node == nil {
		return path.NotFound
	}
	if node.Kind == Directory {
		return path.Yes
	}
	return path.No
}

// IsFile is IsDirectory's symmetric counterpart.
func (t *Tree) IsFile(components []string) path.Result {
	node, _, _ := t.Walk(components)
	if node == nil {
		return path.NotFound
	}
	if node.Kind == File {
		return path.Yes
	}
	return path.No
}

// List returns the names of a directory's children (files and
// sub-directories, any order), or (nil, NotFound) if components does not
// resolve to an existing directory.
func (t *Tree) List(components []string) ([]string, path.Result) {
	node, _, _ := t.Walk(components)
	if node == nil || node.Kind != Directory {
		return nil, path.NotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	return names, path.Yes
}

// CreateDirectory inserts an empty directory at components. Fails (returns
// false) if components is root, the name already exists, or the parent does
// not exist.
func (t *Tree) CreateDirectory(components []string) (bool, path.Result) {
	if len(components) == 0 {
		return false, path.Yes // root always exists; "already exists" case
	}

	parentComponents := path.Parent(components)
	parent, _, _ := t.Walk(parentComponents)
	if parent == nil || parent.Kind != Directory {
		return false, path.NotFound
	}

	name := path.Basename(components)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := parent.Children[name]; exists {
		return false, path.Yes
	}
	parent.Children[name] = newDirectory(name, parent, t.lm)
	return true, path.Yes
}

// CreateFileNode inserts a file node at components, once the caller has
// confirmed the backing Storage Node accepted storage_create. Fails (returns
// false) under the same conditions as CreateDirectory.
func (t *Tree) CreateFileNode(components []string) (bool, path.Result) {
	if len(components) == 0 {
		return false, path.Yes
	}

	parentComponents := path.Parent(components)
	parent, _, _ := t.Walk(parentComponents)
	if parent == nil || parent.Kind != Directory {
		return false, path.NotFound
	}

	name := path.Basename(components)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := parent.Children[name]; exists {
		return false, path.Yes
	}
	parent.Children[name] = newFile(name, parent, t.lm)
	return true, path.Yes
}

// Delete removes the node at components from its parent's children. The
// root cannot be deleted. Recursive file enumeration for a directory delete
// is the caller's responsibility (C7/delete orchestrates the per-file
// storage_delete fan-out, then calls Delete once on the directory, which
// drops its whole subtree).
func (t *Tree) Delete(components []string) bool {
	if len(components) == 0 {
		return false
	}

	node, _, _ := t.Walk(components)
	if node == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(node.Parent.Children, node.Name)
	return true
}

// Files returns every file node beneath (and including, if it is itself a
// file) the node at components, as full "/"-joined paths, depth-first.
// Used by Delete's directory case to enumerate hosts to notify.
func (t *Tree) Files(components []string) []string {
	node, _, _ := t.Walk(components)
	if node == nil {
		return nil
	}
	var out []string
	collectFiles(node, components, &out)
	return out
}

func collectFiles(n *Node, prefix []string, out *[]string) {
	if n.Kind == File {
		*out = append(*out, path.Join(prefix))
		return
	}
	for name, child := range n.Children {
		collectFiles(child, append(append([]string{}, prefix...), name), out)
	}
}
