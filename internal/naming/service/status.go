package service

import "github.com/latticefs/lattice/internal/naming/ledger"

// NodeStatus summarizes one registered Storage Node for operator tooling.
type NodeStatus struct {
	StorageIP   string
	ClientPort  int
	CommandPort int
	FileCount   int
}

// Status is a point-in-time snapshot of the Naming Service's internal
// state, assembled for the registration port's /debug/status endpoint and
// the CLI's `status` subcommand table.
type Status struct {
	Nodes           []NodeStatus
	RegistrySize    int
	LedgerEntries   map[string]ledger.Entry
	LiveLocks       int
	ReplicationJobs int
}

// Status builds a Status snapshot by consulting the registry, ledger, lock
// manager, and replication engine — each already safe for concurrent
// inspection independently of the service's own request-serving path.
func (s *Service) Status() Status {
	nodes := s.registry.Nodes()
	fileCounts := make(map[registryKey]int, len(nodes))
	for path, entry := range s.ledger.Snapshot() {
		for _, h := range entry.Hosts {
			fileCounts[registryKey{h.StorageIP, h.ClientPort, h.CommandPort}]++
		}
		_ = path
	}

	out := make([]NodeStatus, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeStatus{
			StorageIP:   n.StorageIP,
			ClientPort:  n.ClientPort,
			CommandPort: n.CommandPort,
			FileCount:   fileCounts[registryKey{n.StorageIP, n.ClientPort, n.CommandPort}],
		})
	}

	pending := 0
	if s.replica != nil {
		pending = s.replica.Pending()
	}

	return Status{
		Nodes:           out,
		RegistrySize:    s.registry.Size(),
		LedgerEntries:   s.ledger.Snapshot(),
		LiveLocks:       s.lm.LiveLocks(),
		ReplicationJobs: pending,
	}
}

type registryKey struct {
	ip          string
	clientPort  int
	commandPort int
}
