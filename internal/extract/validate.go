package extract

import (
	"fmt"
	"strings"

	"github.com/chalimba/papertree/internal/paper"
)

// Validate checks the structural invariants the engine guarantees:
// node numbers are unique within the tree, and every non-empty parent
// number equals the node's own number with its last segment removed.
// A non-nil error means an engine bug, not bad input; malformed input
// is handled upstream by failing open to aggregation.
func Validate(t *paper.Tree) error {
	seen := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Number == "" {
			if n.Parent != "" {
				return fmt.Errorf("unnumbered node %s has parent %q", n.ID, n.Parent)
			}
			continue
		}
		if seen[n.Number] {
			return fmt.Errorf("duplicate node number %q", n.Number)
		}
		seen[n.Number] = true

		if want := truncateNumber(n.Number); n.Parent != want {
			return fmt.Errorf("node %s: parent %q, want %q", n.Number, n.Parent, want)
		}
		if n.Orphaned && t.Lookup(n.Parent) != nil {
			return fmt.Errorf("node %s flagged orphaned but parent %q exists", n.Number, n.Parent)
		}
		if !n.Orphaned && n.Parent != "" && t.Lookup(n.Parent) == nil {
			return fmt.Errorf("node %s: parent %q missing without orphan flag", n.Number, n.Parent)
		}
	}
	return nil
}

// truncateNumber drops the last dotted segment; "1.1.2" -> "1.1",
// "3" -> "".
func truncateNumber(number string) string {
	i := strings.LastIndexByte(number, '.')
	if i < 0 {
		return ""
	}
	return number[:i]
}
