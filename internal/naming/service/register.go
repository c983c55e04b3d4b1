package service

import (
	npath "github.com/latticefs/lattice/internal/naming/path"
	"github.com/latticefs/lattice/internal/naming/registry"
)

// Register implements §4.3's full registration flow: it validates no
// identical registration already exists, materializes every genuinely new
// file into the namespace tree (creating parent directories as needed),
// creates its ledger entry, and returns the files the Storage Node already
// holds a stale duplicate of.
func (s *Service) Register(reg registry.Registration) (duplicates []string, err error) {
	duplicates, newFiles, err := s.registry.Register(reg)
	if err != nil {
		return nil, err
	}

	for _, f := range newFiles {
		components, err := npath.Validate(f)
		if err != nil {
			// A malformed path in a registration payload is a client bug;
			// skip it rather than failing the whole batch (best-effort,
			// matching §5's general tolerance for partial failure here).
			continue
		}
		canonical := npath.Join(components)

		parentComponents := npath.Parent(components)
		s.ensureDirectories(parentComponents)

		if ok, _ := s.tree.CreateFileNode(components); !ok {
			continue
		}
		_ = s.ledger.Create(canonical, reg.Node)
	}

	return duplicates, nil
}

// ensureDirectories creates every missing ancestor directory of components,
// root-to-leaf, per §4.3 step 2 ("creating parent directories as needed").
func (s *Service) ensureDirectories(components []string) {
	for i := 1; i <= len(components); i++ {
		s.tree.CreateDirectory(components[:i])
	}
}
