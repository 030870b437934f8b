package extract

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chalimba/papertree/internal/paper"
)

// paras builds a paragraph block sequence with stable IDs, the way a
// parser would.
func paras(texts ...string) []paper.Block {
	blocks := make([]paper.Block, 0, len(texts))
	for i, text := range texts {
		blocks = append(blocks, paper.Block{
			ID:   paper.BlockID(i, fmt.Sprintf("paragraph:%s", text)),
			Kind: paper.BlockParagraph,
			Text: text,
		})
	}
	return blocks
}

func extractBlocks(t *testing.T, blocks []paper.Block) (*paper.Tree, *paper.Diagnostics) {
	t.Helper()
	tree, diags, err := NewDefault().Extract(paper.RawDocument{
		PaperID: "p1",
		Name:    "Sample Paper",
		Blocks:  blocks,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return tree, diags
}

func TestExtract_EmptyDocument(t *testing.T) {
	tree, diags := extractBlocks(t, nil)
	if len(tree.Nodes) != 0 {
		t.Fatalf("expected empty tree, got %d nodes", len(tree.Nodes))
	}
	if !diags.Empty() {
		t.Errorf("expected no diagnostics, got %+v", diags)
	}
}

func TestExtract_Aggregation(t *testing.T) {
	tree, diags := extractBlocks(t, paras(
		"GEOGRAPHY PAPER 1",
		"Time: 2 hours",
		"1 Study the map extract provided.",
		"Refer to the legend.",
		"1.1 Name the feature at grid reference 23A. (2 marks)",
		"2 Answer the following.",
	))

	if len(tree.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(tree.Nodes))
	}

	root := tree.Nodes[0]
	if root.Number != "" || root.Kind != paper.KindCover {
		t.Errorf("preface node: number=%q kind=%q, want cover root", root.Number, root.Kind)
	}
	if len(root.Blocks) != 2 {
		t.Errorf("preface should own 2 blocks, got %d", len(root.Blocks))
	}

	q1 := tree.Lookup("1")
	if q1 == nil {
		t.Fatal("node 1 missing")
	}
	if q1.Title != "Study the map extract provided." {
		t.Errorf("node 1 title = %q", q1.Title)
	}
	if len(q1.Blocks) != 2 {
		t.Errorf("node 1 should own heading plus continuation, got %d blocks", len(q1.Blocks))
	}

	q11 := tree.Lookup("1.1")
	if q11 == nil {
		t.Fatal("node 1.1 missing")
	}
	if q11.Parent != "1" {
		t.Errorf("node 1.1 parent = %q, want 1", q11.Parent)
	}
	if q11.Marks == nil || *q11.Marks != 2 {
		t.Errorf("node 1.1 marks = %v, want 2", q11.Marks)
	}

	if got := tree.Children("1"); len(got) != 1 || got[0].Number != "1.1" {
		t.Errorf("Children(1) = %v", got)
	}

	// 1 and 2 have no mark expression anywhere in their content.
	if !reflect.DeepEqual(diags.MissingMarks, []string{"1", "2"}) {
		t.Errorf("MissingMarks = %v, want [1 2]", diags.MissingMarks)
	}
	if len(diags.Orphans) != 0 || len(diags.Gaps) != 0 {
		t.Errorf("unexpected diagnostics: %+v", diags)
	}
}

func TestExtract_InstructionPreface(t *testing.T) {
	tree, _ := extractBlocks(t, paras(
		"Read all instructions carefully before starting.",
		"1 First question.",
	))
	if tree.Nodes[0].Kind != paper.KindInstruction {
		t.Errorf("preface kind = %q, want instruction", tree.Nodes[0].Kind)
	}
}

func TestExtract_MarksOnlyLineStaysWithPreviousNode(t *testing.T) {
	tree, _ := extractBlocks(t, paras(
		"1 Define the term biome.",
		"(10 marks)",
		"2 Next question. (5 marks)",
	))
	q1 := tree.Lookup("1")
	if q1 == nil || len(q1.Blocks) != 2 {
		t.Fatalf("marks-only line should attach to node 1: %+v", q1)
	}
	if q1.Marks == nil || *q1.Marks != 10 {
		t.Errorf("node 1 marks = %v, want 10", q1.Marks)
	}
}

func TestExtract_OrphanFlaggedNeverRepaired(t *testing.T) {
	tree, diags := extractBlocks(t, paras(
		"1 First question.",
		"2.1 Sub-question with no parent 2.",
	))

	orphan := tree.Lookup("2.1")
	if orphan == nil {
		t.Fatal("node 2.1 missing")
	}
	if !orphan.Orphaned {
		t.Error("node 2.1 should be flagged orphaned")
	}
	if orphan.Parent != "2" {
		t.Errorf("orphan parent = %q, want the truncated number 2", orphan.Parent)
	}
	if !reflect.DeepEqual(diags.Orphans, []string{"2.1"}) {
		t.Errorf("Orphans = %v", diags.Orphans)
	}
}

func TestExtract_GapDiagnostics(t *testing.T) {
	_, diags := extractBlocks(t, paras(
		"1 First.",
		"1.1 Sub one.",
		"1.1.1 Deep one.",
		"1.1.3 Deep three.",
	))
	if !reflect.DeepEqual(diags.Gaps, []string{"1.1.2"}) {
		t.Errorf("Gaps = %v, want [1.1.2]", diags.Gaps)
	}
}

func TestExtract_DuplicateNumbersMergeIntoFirst(t *testing.T) {
	tree, diags := extractBlocks(t, paras(
		"1 First occurrence.",
		"Some content.",
		"1 Second occurrence of the same number.",
		"Trailing content after the duplicate.",
	))

	if len(tree.Nodes) != 1 {
		t.Fatalf("expected duplicate merged into one node, got %d", len(tree.Nodes))
	}
	n := tree.Lookup("1")
	if n.Title != "First occurrence." {
		t.Errorf("merged node keeps the first title, got %q", n.Title)
	}
	if len(n.Blocks) != 4 {
		t.Errorf("merged node should own all 4 blocks, got %d", len(n.Blocks))
	}
	if !reflect.DeepEqual(diags.DuplicatesMerged, []string{"1"}) {
		t.Errorf("DuplicatesMerged = %v", diags.DuplicatesMerged)
	}
	if err := Validate(tree); err != nil {
		t.Errorf("merged tree fails validation: %v", err)
	}
}

func TestExtract_LeadingContinuationsOnly(t *testing.T) {
	// A document with no recognized headings becomes a single root node.
	tree, _ := extractBlocks(t, paras(
		"This memo has no numbered questions at all.",
		"Just prose.",
	))
	if len(tree.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree.Nodes))
	}
	if tree.Nodes[0].Number != "" {
		t.Errorf("unheaded content should form the synthetic root")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	blocks := paras(
		"MATHEMATICS PAPER 2",
		"1 Solve for x. (3 marks)",
		"1.1 Show all working.",
		"2 Prove the identity. (5 marks)",
	)
	tree1, _ := extractBlocks(t, blocks)
	tree2, _ := extractBlocks(t, tree1.Blocks())

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(paper.Tree{}),
	}
	if diff := cmp.Diff(tree1, tree2, opts); diff != "" {
		t.Errorf("re-extraction differs (-first +second):\n%s", diff)
	}
}

func TestExtract_IdempotentWithDuplicateHeadings(t *testing.T) {
	// Merging a duplicate heading pulls its blocks out of raw input
	// order, so flattening and re-extracting exercises node identity
	// under a reordered block sequence.
	blocks := paras(
		"1 First question.",
		"1.1 Sub-question.",
		"1 Repeated question one.",
		"Continuation of the repeat.",
	)
	tree1, diags1 := extractBlocks(t, blocks)
	if len(diags1.DuplicatesMerged) != 1 {
		t.Fatalf("expected a duplicate merge, got %+v", diags1)
	}

	tree2, _ := extractBlocks(t, tree1.Blocks())

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(paper.Tree{}),
	}
	if diff := cmp.Diff(tree1, tree2, opts); diff != "" {
		t.Errorf("re-extraction differs (-first +second):\n%s", diff)
	}
	if tree1.Lookup("1.1").ID != tree2.Lookup("1.1").ID {
		t.Error("node identity changed across the round trip")
	}
}

func TestExtract_BlockOrderPreserved(t *testing.T) {
	blocks := paras(
		"Cover text.",
		"1 Question one.",
		"Continuation.",
		"2 Question two.",
	)
	tree, _ := extractBlocks(t, blocks)
	flat := tree.Blocks()
	if len(flat) != len(blocks) {
		t.Fatalf("flattened %d blocks, want %d", len(flat), len(blocks))
	}
	for i := range blocks {
		if flat[i].ID != blocks[i].ID {
			t.Errorf("block %d reordered or dropped", i)
		}
	}
}

func TestCompare(t *testing.T) {
	base := paras(
		"1 Question one. (3 marks)",
		"2 Question two. (5 marks)",
	)
	old, _ := extractBlocks(t, base)

	t.Run("no changes", func(t *testing.T) {
		fresh, _ := extractBlocks(t, base)
		if changes := Compare(old, fresh); len(changes) != 0 {
			t.Errorf("unchanged input reported changes: %v", changes)
		}
	})

	t.Run("added and removed", func(t *testing.T) {
		fresh, _ := extractBlocks(t, paras(
			"1 Question one. (3 marks)",
			"3 A new question. (2 marks)",
		))
		changes := Compare(old, fresh)
		types := map[ChangeType]string{}
		for _, c := range changes {
			types[c.Type] = c.Number
		}
		if types[ChangeAdded] != "3" {
			t.Errorf("expected node 3 added, got %v", changes)
		}
		if types[ChangeRemoved] != "2" {
			t.Errorf("expected node 2 removed, got %v", changes)
		}
	})

	t.Run("marks changed", func(t *testing.T) {
		fresh, _ := extractBlocks(t, paras(
			"1 Question one. (4 marks)",
			"2 Question two. (5 marks)",
		))
		changes := Compare(old, fresh)
		var sawMarks, sawContent bool
		for _, c := range changes {
			if c.Number != "1" {
				t.Errorf("unexpected change on node %s: %+v", c.Number, c)
			}
			switch c.Type {
			case ChangeMarks:
				sawMarks = true
				if c.Detail != "3 -> 4" {
					t.Errorf("marks detail = %q", c.Detail)
				}
			case ChangeContent:
				sawContent = true
			}
		}
		if !sawMarks || !sawContent {
			t.Errorf("expected marks and content changes on node 1: %v", changes)
		}
	})
}
