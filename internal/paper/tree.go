package paper

// NodeKind classifies a node in the extracted tree.
type NodeKind string

const (
	KindQuestion    NodeKind = "question"
	KindCover       NodeKind = "cover"
	KindInstruction NodeKind = "instruction"
)

// Node is one recognized question heading (or the synthetic root for
// leading unnumbered content) together with the blocks it owns.
type Node struct {
	ID     string   `json:"id"`
	Number string   `json:"number"` // dotted path, "" for the synthetic root
	Path   []int    `json:"path,omitempty"`
	Parent string   `json:"parent"` // "" for depth-1 and root nodes
	Kind   NodeKind `json:"kind"`

	// Title is the heading's residual text after the numeric run.
	Title  string  `json:"title,omitempty"`
	Blocks []Block `json:"blocks"`

	// Marks is nil when no strategy in the cascade detected a value.
	// Absence is a reportable state, never defaulted to zero.
	Marks *int `json:"marks"`

	Orphaned   bool `json:"orphaned,omitempty"`
	OrderIndex int  `json:"order_index"`
}

// Tree is the ordered forest of nodes for one paper. Document order is
// the total order; parent/child links are number references, not nesting,
// so an orphan is simply a node whose parent lookup fails.
type Tree struct {
	PaperID string  `json:"paper_id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Nodes   []*Node `json:"nodes"`

	index map[string]*Node
}

// Add appends a node in document order.
func (t *Tree) Add(n *Node) {
	n.OrderIndex = len(t.Nodes)
	t.Nodes = append(t.Nodes, n)
	if t.index == nil {
		t.index = make(map[string]*Node)
	}
	if n.Number != "" {
		if _, exists := t.index[n.Number]; !exists {
			t.index[n.Number] = n
		}
	}
}

// Lookup returns the node with the given number, or nil.
func (t *Tree) Lookup(number string) *Node {
	if number == "" || t.index == nil {
		return nil
	}
	return t.index[number]
}

// Children returns the nodes whose parent is the given number, in
// document order.
func (t *Tree) Children(number string) []*Node {
	var out []*Node
	for _, n := range t.Nodes {
		if n.Number != "" && n.Parent == number && n.Number != number {
			out = append(out, n)
		}
	}
	return out
}

// Blocks flattens the tree back into the original ordered block
// sequence. Extraction never drops or reorders blocks, so feeding the
// result back through the engine reproduces the same tree.
func (t *Tree) Blocks() []Block {
	var out []Block
	for _, n := range t.Nodes {
		out = append(out, n.Blocks...)
	}
	return out
}

// TotalMarks sums the resolved marks of question nodes. Nodes with
// undetected marks contribute nothing.
func (t *Tree) TotalMarks() int {
	total := 0
	for _, n := range t.Nodes {
		if n.Kind == KindQuestion && n.Marks != nil {
			total += *n.Marks
		}
	}
	return total
}

// QuestionCount counts question nodes.
func (t *Tree) QuestionCount() int {
	count := 0
	for _, n := range t.Nodes {
		if n.Kind == KindQuestion {
			count++
		}
	}
	return count
}

// Reindex rebuilds the number index after deserialization.
func (t *Tree) Reindex() {
	t.index = make(map[string]*Node, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Number == "" {
			continue
		}
		if _, exists := t.index[n.Number]; !exists {
			t.index[n.Number] = n
		}
	}
}

// Diagnostics collects the non-fatal findings of one extraction run for
// surfacing to a human operator. Every condition here leaves the tree
// usable; nothing in the engine is fatal.
type Diagnostics struct {
	Gaps             []string `json:"gaps"`
	DuplicatesMerged []string `json:"duplicates_merged"`
	Orphans          []string `json:"orphans"`
	MissingMarks     []string `json:"missing_marks"`
}

// NewDiagnostics returns a Diagnostics with non-nil slices so it
// serializes as empty arrays, not nulls.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Gaps:             []string{},
		DuplicatesMerged: []string{},
		Orphans:          []string{},
		MissingMarks:     []string{},
	}
}

// Empty reports whether the run produced no findings.
func (d *Diagnostics) Empty() bool {
	return len(d.Gaps) == 0 && len(d.DuplicatesMerged) == 0 &&
		len(d.Orphans) == 0 && len(d.MissingMarks) == 0
}
