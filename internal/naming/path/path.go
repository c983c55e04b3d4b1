// Package path implements the naming service's path normalization and
// validation rules (§4.1): a valid path begins with "/", contains no ":",
// and has its empty components (from repeated or trailing slashes) dropped.
package path

import (
	"strings"

	"github.com/latticefs/lattice/internal/naming/nerr"
)

// Validate cleans p into a component list, or fails with nerr.InvalidArgument
// if p is empty, does not start with "/", or contains ":".
func Validate(p string) ([]string, error) {
	if p == "" {
		return nil, nerr.New(nerr.InvalidArgument, "path is empty")
	}
	if !strings.HasPrefix(p, "/") {
		return nil, nerr.New(nerr.InvalidArgument, "path %q does not start with /", p)
	}
	if strings.Contains(p, ":") {
		return nil, nerr.New(nerr.InvalidArgument, "path %q contains ':'", p)
	}

	raw := strings.Split(p, "/")
	components := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			components = append(components, c)
		}
	}
	return components, nil
}

// Parent returns the cleaned component list of p's parent directory.
// The parent of root ("/") is root (empty list).
func Parent(components []string) []string {
	if len(components) == 0 {
		return nil
	}
	return components[:len(components)-1]
}

// Basename returns the last component of components, or "" for root.
func Basename(components []string) string {
	if len(components) == 0 {
		return ""
	}
	return components[len(components)-1]
}

// Join renders a component list back into a canonical "/"-prefixed path.
func Join(components []string) string {
	if len(components) == 0 {
		return "/"
	}
	return "/" + strings.Join(components, "/")
}

// Result is the three-valued outcome of resolving a path, per §9's
// normalization note: the source conflated "is a file" with "doesn't exist"
// by returning None/False interchangeably. A Walk or Is* query instead
// returns one of Yes, No, or NotFound.
type Result int

const (
	// Yes means the path resolves and satisfies the predicate.
	Yes Result = iota
	// No means the path resolves but does not satisfy the predicate.
	No
	// NotFound means no node exists at the path.
	NotFound
)
