package marks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalimba/papertree/internal/paper"
)

func strptr(s string) *string { return &s }

func TestResolve_InlineInTitle(t *testing.T) {
	n := &paper.Node{Title: "Explain the water cycle. (10 marks)"}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 10, *v)
}

func TestResolve_InlineInBlockText(t *testing.T) {
	n := &paper.Node{
		Title: "Discuss the causes of erosion.",
		Blocks: []paper.Block{
			{Kind: paper.BlockParagraph, Text: "Refer to the diagram below."},
			{Kind: paper.BlockParagraph, Text: "- 5 marks"},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 5, *v)
}

func TestResolve_FirstInlineWins(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockParagraph, Text: "Part (a) carries 3 marks."},
			{Kind: paper.BlockParagraph, Text: "Part (b) carries 7 marks."},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 3, *v, "scanning is left to right in document order")
}

func TestResolve_OverrideBeatsInline(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockParagraph, Text: "Worth 10 marks.", MarkOverride: strptr("5")},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 5, *v)
}

func TestResolve_OverrideRangeUsesFirstNumber(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockParagraph, Text: "Essay question.", MarkOverride: strptr("10-12")},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 10, *v)
}

func TestResolve_InlineInTableCell(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockTable, Table: &paper.Table{
				Rows: [][]string{
					{"Criterion", "Allocation"},
					{"Structure", "4 marks"},
				},
			}},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 4, *v)
}

func TestResolve_TableTotalFallback(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockTable, Table: &paper.Table{
				Rows: [][]string{
					{"Section A", "40"},
					{"Section B", "60"},
					{"Total", "100"},
				},
			}},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 100, *v)
}

func TestResolve_TableTotalInLabelCell(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockTable, Table: &paper.Table{
				Rows: [][]string{{"Total: 25"}},
			}},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 25, *v)
}

func TestResolve_TableTotalBlankValue(t *testing.T) {
	// An answer-sheet scaffold with no filled-in number resolves nothing.
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockTable, Table: &paper.Table{
				Rows: [][]string{{"Total = ____", ""}},
			}},
		},
	}
	assert.Nil(t, Resolve(n))
}

func TestResolve_TableFromHTML(t *testing.T) {
	n := &paper.Node{
		Blocks: []paper.Block{
			{Kind: paper.BlockTable, Table: &paper.Table{
				HTML: "<table><tr><td>Total</td><td>75</td></tr></table>",
			}},
		},
	}
	v := Resolve(n)
	require.NotNil(t, v)
	assert.Equal(t, 75, *v)
}

func TestResolve_NothingDetected(t *testing.T) {
	// Spelled-out numbers never match; absence stays absent, never zero.
	n := &paper.Node{
		Title: "Write an essay on climate change.",
		Blocks: []paper.Block{
			{Kind: paper.BlockParagraph, Text: "Spelling counts for ten marks."},
		},
	}
	assert.Nil(t, Resolve(n))
}
