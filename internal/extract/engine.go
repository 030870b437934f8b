// Package extract is the numbering engine: it folds an ordered block
// sequence into heading groups, resolves parent links and marks, and
// assembles the node tree. The engine is a pure synchronous
// transformation; it performs no I/O and holds no state between runs,
// so re-running it over identical input reproduces an identical tree.
package extract

import (
	"strings"

	"github.com/chalimba/papertree/internal/marks"
	"github.com/chalimba/papertree/internal/numbering"
	"github.com/chalimba/papertree/internal/paper"
)

// Engine runs extraction with a configured heading matcher.
type Engine struct {
	matcher *numbering.Matcher
}

// New returns an Engine using the given matcher.
func New(m *numbering.Matcher) *Engine {
	if m == nil {
		m = numbering.NewMatcher()
	}
	return &Engine{matcher: m}
}

// NewDefault returns an Engine with the built-in heading shapes.
func NewDefault() *Engine {
	return New(numbering.NewMatcher())
}

// group is one heading plus the trailing content it owns. A nil path
// marks the synthetic root for leading unnumbered content.
type group struct {
	path   numbering.Path
	title  string
	blocks []paper.Block
}

// Extract converts a raw block sequence into a node tree plus the
// diagnostics of the run. No input condition is fatal: malformed
// headings aggregate, orphans and duplicates are flagged, and an empty
// document yields an empty tree. The returned error only reports an
// internal invariant violation and is nil for any well-formed build.
func (e *Engine) Extract(doc paper.RawDocument) (*paper.Tree, *paper.Diagnostics, error) {
	diags := paper.NewDiagnostics()
	tree := &paper.Tree{PaperID: doc.PaperID, Name: doc.Name}

	groups := e.aggregate(doc.Blocks, diags)

	for gi, g := range groups {
		node := &paper.Node{
			Blocks: g.blocks,
			Title:  g.title,
		}
		if g.path == nil {
			node.Kind = classifyPreface(g.blocks)
		} else {
			node.Kind = paper.KindQuestion
			node.Number = g.path.String()
			node.Path = g.path
			if parent := g.path.Parent(); parent != nil {
				node.Parent = parent.String()
			}
		}
		// The group's position becomes the node's OrderIndex, which
		// survives the Blocks() round-trip even when duplicate headings
		// were merged out of raw input order. The raw block index does
		// not, so it must never salt the ID.
		node.ID = paper.NodeID(node.Number, gi)
		node.Marks = marks.Resolve(node)
		if node.Kind == paper.KindQuestion && node.Marks == nil {
			diags.MissingMarks = append(diags.MissingMarks, node.Number)
		}
		tree.Add(node)
	}

	// Orphan detection: a node whose parent number has no node stays in
	// the tree, flagged, never re-attached elsewhere.
	var questionPaths []numbering.Path
	for _, n := range tree.Nodes {
		if n.Number == "" {
			continue
		}
		questionPaths = append(questionPaths, numbering.Path(n.Path))
		if n.Parent != "" && tree.Lookup(n.Parent) == nil {
			n.Orphaned = true
			diags.Orphans = append(diags.Orphans, n.Number)
		}
	}

	diags.Gaps = append(diags.Gaps, numbering.DetectGaps(questionPaths)...)

	if err := Validate(tree); err != nil {
		return tree, diags, err
	}
	return tree, diags, nil
}

// aggregate folds the block sequence into groups, threading the current
// open group as explicit state: every continuation attaches to the most
// recently opened heading, and leading unheaded content forms the
// synthetic root. Duplicate paths merge into the first occurrence.
func (e *Engine) aggregate(blocks []paper.Block, diags *paper.Diagnostics) []*group {
	var groups []*group
	byNumber := make(map[string]*group)
	var current *group

	open := func(g *group) {
		groups = append(groups, g)
		current = g
	}

	for _, b := range blocks {
		tok := e.matcher.Classify(b.Text)
		if tok.Heading {
			number := tok.Path.String()
			if existing, ok := byNumber[number]; ok {
				// Later occurrence of a known path: keep the content as
				// a sibling continuation of the same node instead of
				// silently duplicating it.
				diags.DuplicatesMerged = append(diags.DuplicatesMerged, number)
				existing.blocks = append(existing.blocks, b)
				current = existing
				continue
			}
			g := &group{path: tok.Path, title: tok.Residual}
			g.blocks = append(g.blocks, b)
			byNumber[number] = g
			open(g)
			continue
		}
		if current == nil {
			open(&group{})
		}
		current.blocks = append(current.blocks, b)
	}
	return groups
}

// instructionCues decide whether the synthetic root is an instruction
// page rather than a cover page.
var instructionCues = []string{
	"instruction",
	"read all instructions",
	"answer all questions",
	"rubric",
}

func classifyPreface(blocks []paper.Block) paper.NodeKind {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(strings.ToLower(b.Text))
		sb.WriteByte('\n')
	}
	text := sb.String()
	for _, cue := range instructionCues {
		if strings.Contains(text, cue) {
			return paper.KindInstruction
		}
	}
	return paper.KindCover
}
