package storage

import (
	"context"
	"time"

	"github.com/latticefs/lattice/internal/logger"
)

// Node is a Storage Node's runtime state: its local store, metadata index,
// and the peer client it uses to pull bytes for storage_copy.
type Node struct {
	Store *FSStore
	Index *Index
	Peers *PeerClient

	StorageIP   string
	ClientPort  int
	CommandPort int
}

// Config configures a Node.
type Config struct {
	RootDir     string
	IndexDir    string
	StorageIP   string
	ClientPort  int
	CommandPort int
}

// NewNode opens the local store and index and rebuilds the index from disk,
// per SPEC_FULL's "walks root_dir, populates its local Badger index" startup
// sequence, run once before registration.
func NewNode(cfg Config) (*Node, error) {
	store, err := NewFSStore(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	idx, err := OpenIndex(cfg.IndexDir)
	if err != nil {
		return nil, err
	}

	n, err := idx.Rebuild(store)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}
	logger.Info("storage index rebuilt from disk", "root", cfg.RootDir, "files", n)

	return &Node{
		Store:       store,
		Index:       idx,
		Peers:       NewPeerClient(30 * time.Second),
		StorageIP:   cfg.StorageIP,
		ClientPort:  cfg.ClientPort,
		CommandPort: cfg.CommandPort,
	}, nil
}

// Close releases the node's resources.
func (n *Node) Close() error {
	return n.Index.Close()
}

// Files lists every path currently known to the local store, for the
// registration request's files[] field.
func (n *Node) Files() ([]string, error) {
	return n.Store.Walk()
}

// RegisterWithRetry announces this node to the Naming Service's
// registration port, retrying with exponential backoff (capped) until
// accepted or ctx is cancelled. A rejected duplicate registration
// (IllegalState) is not retried — it means this exact node is already known.
func (n *Node) RegisterWithRetry(ctx context.Context, registrationClient *RegistrationClient) ([]string, error) {
	files, err := n.Files()
	if err != nil {
		return nil, err
	}

	backoff := 500 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for {
		duplicates, err := registrationClient.Register(ctx, RegisterRequest{
			StorageIP:   n.StorageIP,
			ClientPort:  n.ClientPort,
			CommandPort: n.CommandPort,
			Files:       files,
		})
		if err == nil {
			return duplicates, nil
		}
		if IsIllegalState(err) {
			return nil, err
		}

		logger.Warn("registration with naming service failed, retrying", "err", err, "backoff", backoff.String())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
