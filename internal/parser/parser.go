package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chalimba/papertree/internal/paper"
)

// Parser captures an uploaded document as an ordered block sequence.
// Parsers only capture content; structure recovery belongs to the
// numbering engine.
type Parser interface {
	Parse(r io.Reader, filename string) ([]paper.Block, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// PaperName derives a display name from the uploaded filename.
func PaperName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// blockBuilder numbers blocks as they are captured so block IDs stay
// stable across re-parses of the same file.
type blockBuilder struct {
	blocks []paper.Block
}

func (bb *blockBuilder) paragraph(text string, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	bb.add(paper.Block{Kind: paper.BlockParagraph, Text: text, Page: page})
}

func (bb *blockBuilder) table(t *paper.Table, page int) {
	bb.add(paper.Block{Kind: paper.BlockTable, Table: t, Page: page})
}

func (bb *blockBuilder) image(ref string, page int) {
	bb.add(paper.Block{Kind: paper.BlockImage, ImageRef: ref, Page: page})
}

func (bb *blockBuilder) pagebreak(page int) {
	bb.add(paper.Block{Kind: paper.BlockPageBreak, Page: page})
}

func (bb *blockBuilder) add(b paper.Block) {
	seed := b.Text
	if seed == "" && b.Table != nil {
		seed = b.Table.HTML
		for _, row := range b.Table.Rows {
			seed += strings.Join(row, "\x00")
		}
	}
	if seed == "" {
		seed = b.ImageRef
	}
	b.ID = paper.BlockID(len(bb.blocks), string(b.Kind)+":"+seed)
	bb.blocks = append(bb.blocks, b)
}
