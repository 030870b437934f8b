// Package paper holds the data model for extracted exam papers: captured
// content blocks, numbered question nodes, and the tree the numbering
// engine produces.
package paper

import (
	"fmt"

	"github.com/google/uuid"
)

// BlockKind classifies a captured content block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
	BlockPageBreak BlockKind = "pagebreak"
)

// Table is the payload of a table block. Rows is the canonical form;
// HTML is kept when the source format supplied markup (docx, html).
type Table struct {
	Rows [][]string `json:"rows,omitempty"`
	HTML string     `json:"html,omitempty"`
}

// Block is an atomic unit of captured content in original document order.
// Blocks are immutable once captured; the engine only groups them.
type Block struct {
	ID       string    `json:"id"`
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Table    *Table    `json:"table,omitempty"`
	ImageRef string    `json:"image_ref,omitempty"`
	Page     int       `json:"page,omitempty"`

	// MarkOverride is an out-of-band mark annotation supplied by the
	// source format or a prior user edit. It wins over any detected value.
	MarkOverride *string `json:"mark_override,omitempty"`
}

// RawDocument is the engine input: the ordered block sequence captured
// from one uploaded paper.
type RawDocument struct {
	PaperID string  `json:"paper_id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// blockNamespace scopes deterministic block and node IDs so that
// re-running extraction over identical input reproduces identical IDs.
var blockNamespace = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

// BlockID derives a stable ID for the block at the given position.
// The same (index, seed) pair always yields the same ID.
func BlockID(index int, seed string) string {
	return uuid.NewSHA1(blockNamespace, []byte(fmt.Sprintf("block:%d:%s", index, seed))).String()
}

// NodeID derives a stable ID for the node with the given number at the
// given position in the tree.
func NodeID(number string, orderIndex int) string {
	if number == "" {
		number = "root"
	}
	return uuid.NewSHA1(blockNamespace, []byte(fmt.Sprintf("node:%s:%d", number, orderIndex))).String()
}
