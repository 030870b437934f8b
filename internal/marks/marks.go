// Package marks resolves the mark allocation of an assembled node using
// an ordered cascade of strategies: explicit override, inline pattern
// match, then table-total fallback. The first strategy to produce a
// value wins; when none do, the node's marks stay absent and the caller
// reports it, never defaulting to zero.
package marks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chalimba/papertree/internal/numbering"
	"github.com/chalimba/papertree/internal/paper"
)

type strategy func(n *paper.Node) (int, bool)

var cascade = []strategy{overrideMarks, inlineMarks, tableTotal}

// Resolve runs the cascade for a node and returns the resolved mark
// value, or nil when no strategy matched.
func Resolve(n *paper.Node) *int {
	for _, s := range cascade {
		if v, ok := s(n); ok {
			return &v
		}
	}
	return nil
}

// firstIntRE pulls the leading integer out of an override value, which
// may be a range such as "10-12".
var firstIntRE = regexp.MustCompile(`\d+`)

// overrideMarks uses an explicit out-of-band annotation verbatim. The
// stored form is a string to allow ranges; the resolved value is the
// first number in it.
func overrideMarks(n *paper.Node) (int, bool) {
	for _, b := range n.Blocks {
		if b.MarkOverride == nil {
			continue
		}
		m := firstIntRE.FindString(*b.MarkOverride)
		if m == "" {
			continue
		}
		v, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// inlineMarks scans the heading residual and all owned block text, in
// document order, for a "<n> marks" expression. Table cell text counts;
// scanning naturally stops at the node boundary because a node only
// owns blocks up to the next recognized heading.
func inlineMarks(n *paper.Node) (int, bool) {
	if v, ok := numbering.FindInlineMarks(n.Title); ok {
		return v, true
	}
	for _, b := range n.Blocks {
		if v, ok := numbering.FindInlineMarks(b.Text); ok {
			return v, true
		}
		if b.Kind == paper.BlockTable && b.Table != nil {
			for _, row := range tableRows(b.Table) {
				for _, cell := range row {
					if v, ok := numbering.FindInlineMarks(cell); ok {
						return v, true
					}
				}
			}
		}
	}
	return 0, false
}

// standaloneIntRE matches a numeric token not embedded in a word.
var standaloneIntRE = regexp.MustCompile(`\b\d+\b`)

// tableTotal scans owned table blocks for a row whose label cell
// contains the word "total" and extracts the first standalone number
// after the label. "Total = ____" with no trailing digits is no match.
func tableTotal(n *paper.Node) (int, bool) {
	for _, b := range n.Blocks {
		if b.Kind != paper.BlockTable || b.Table == nil {
			continue
		}
		for _, row := range tableRows(b.Table) {
			label := -1
			for i, cell := range row {
				if containsWordTotal(cell) {
					label = i
					break
				}
			}
			if label < 0 {
				continue
			}
			// The number may trail the label in the same cell
			// ("Total: 25") or sit in a following cell.
			candidates := []string{afterTotal(row[label])}
			for i, cell := range row {
				if i != label {
					candidates = append(candidates, cell)
				}
			}
			for _, c := range candidates {
				if m := standaloneIntRE.FindString(c); m != "" {
					if v, err := strconv.Atoi(m); err == nil {
						return v, true
					}
				}
			}
		}
	}
	return 0, false
}

var totalWordRE = regexp.MustCompile(`(?i)\btotal\b`)

func containsWordTotal(cell string) bool {
	return totalWordRE.MatchString(cell)
}

func afterTotal(cell string) string {
	loc := totalWordRE.FindStringIndex(cell)
	if loc == nil {
		return ""
	}
	return cell[loc[1]:]
}

// tableRows returns the canonical rows of a table block, parsing the
// source HTML when rows were not captured directly.
func tableRows(t *paper.Table) [][]string {
	if len(t.Rows) > 0 {
		return t.Rows
	}
	if strings.TrimSpace(t.HTML) != "" {
		return RowsFromHTML(t.HTML)
	}
	return nil
}
