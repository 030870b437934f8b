// Package numbering recovers question numbering structure from raw block
// text: it classifies lines as headings or continuations, parses dotted
// numbering paths, and derives parent paths by truncation.
package numbering

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Path is a dotted question numbering address such as 1.1.2,
// represented as its ordered positive integer segments.
type Path []int

// ParsePath parses a dotted numbering string. Every segment must be a
// positive integer and the string must not start or end with a separator.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, s)
		}
		if n <= 0 {
			return nil, fmt.Errorf("non-positive path segment %d in %q", n, s)
		}
		p = append(p, n)
	}
	return p, nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Depth is the number of segments; always >= 1 for a parsed path.
func (p Path) Depth() int { return len(p) }

// Parent is the path with the last segment removed, nil for depth-1
// paths. No renumbering or gap-filling happens here: 1.1.3 has parent
// 1.1 whether or not 1.1.2 exists.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	parent := make(Path, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent
}

// Equal reports segment-wise equality.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Less orders paths document-style: segment by segment, shorter prefix
// first.
func (p Path) Less(q Path) bool {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return p[i] < q[i]
		}
	}
	return len(p) < len(q)
}

// DetectGaps scans sibling groups for missing sequence numbers and
// returns the missing dotted paths. Detection is advisory only; the
// caller surfaces gaps as diagnostics and never fills them in.
func DetectGaps(paths []Path) []string {
	siblings := make(map[string]map[int]bool)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		parent := p.Parent().String()
		if siblings[parent] == nil {
			siblings[parent] = make(map[int]bool)
		}
		siblings[parent][p[len(p)-1]] = true
	}

	var gaps []string
	for parent, seen := range siblings {
		max := 0
		for n := range seen {
			if n > max {
				max = n
			}
		}
		for n := 1; n < max; n++ {
			if !seen[n] {
				if parent == "" {
					gaps = append(gaps, strconv.Itoa(n))
				} else {
					gaps = append(gaps, parent+"."+strconv.Itoa(n))
				}
			}
		}
	}
	sort.Strings(gaps)
	return gaps
}
