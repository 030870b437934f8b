package extract

import (
	"crypto/sha256"
	"fmt"

	"github.com/chalimba/papertree/internal/paper"
)

// ChangeType classifies one difference between two extraction runs.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeMarks   ChangeType = "marks_changed"
	ChangeContent ChangeType = "content_changed"
)

// Change is one difference reported by Compare.
type Change struct {
	Type   ChangeType `json:"type"`
	Number string     `json:"number"`
	Detail string     `json:"detail,omitempty"`
}

// Compare diffs a previously stored tree against a fresh extraction of
// the same paper. An unchanged block sequence yields no changes; after
// a single block edit, only the owning node (and nodes whose marks
// depended on the edited span) shows up.
func Compare(old, fresh *paper.Tree) []Change {
	changes := []Change{}

	oldByNumber := nodesByNumber(old)
	freshByNumber := nodesByNumber(fresh)

	for _, n := range fresh.Nodes {
		key := n.Number
		prev, ok := oldByNumber[key]
		if !ok {
			changes = append(changes, Change{Type: ChangeAdded, Number: key})
			continue
		}
		if !marksEqual(prev.Marks, n.Marks) {
			changes = append(changes, Change{
				Type:   ChangeMarks,
				Number: key,
				Detail: fmt.Sprintf("%s -> %s", marksString(prev.Marks), marksString(n.Marks)),
			})
		}
		if contentHash(prev) != contentHash(n) {
			changes = append(changes, Change{Type: ChangeContent, Number: key})
		}
	}
	for _, n := range old.Nodes {
		if _, ok := freshByNumber[n.Number]; !ok {
			changes = append(changes, Change{Type: ChangeRemoved, Number: n.Number})
		}
	}
	return changes
}

func nodesByNumber(t *paper.Tree) map[string]*paper.Node {
	m := make(map[string]*paper.Node, len(t.Nodes))
	for _, n := range t.Nodes {
		if _, exists := m[n.Number]; !exists {
			m[n.Number] = n
		}
	}
	return m
}

func marksEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func marksString(m *int) string {
	if m == nil {
		return "absent"
	}
	return fmt.Sprintf("%d", *m)
}

// contentHash fingerprints a node's owned content for change detection.
func contentHash(n *paper.Node) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", n.Number, n.Title)
	for _, b := range n.Blocks {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00", b.Kind, b.Text, b.ImageRef)
		if b.Table != nil {
			for _, row := range b.Table.Rows {
				for _, cell := range row {
					fmt.Fprintf(h, "%s\x00", cell)
				}
				fmt.Fprint(h, "\x01")
			}
			fmt.Fprintf(h, "%s\x00", b.Table.HTML)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
