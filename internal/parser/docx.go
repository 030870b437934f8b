package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/chalimba/papertree/internal/paper"
)

// DOCXParser handles .docx files, the format exam papers are usually
// authored in. Paragraphs and tables are captured in body order;
// heading styles are ignored because question numbering is textual.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]paper.Block, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "papertree-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var bb blockBuilder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text, imgs := docxParagraphContent(it)
			if text != "" {
				bb.paragraph(text, 0)
			}
			for _, ref := range imgs {
				bb.image(ref, 0)
			}
		case *docx.Table:
			if t := docxTable(it); t != nil {
				bb.table(t, 0)
			}
		}
	}
	return bb.blocks, nil
}

// docxParagraphContent collects run text and drawing references from a
// paragraph.
func docxParagraphContent(para *docx.Paragraph) (string, []string) {
	var buf strings.Builder
	var imgs []string
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				buf.WriteString(v.Text)
			case *docx.Drawing:
				imgs = append(imgs, "drawing")
			}
		}
	}
	return strings.TrimSpace(buf.String()), imgs
}

// docxTable flattens a word table into cell text rows.
func docxTable(tbl *docx.Table) *paper.Table {
	t := &paper.Table{}
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var buf strings.Builder
			for _, para := range cell.Paragraphs {
				text, _ := docxParagraphContent(para)
				if text == "" {
					continue
				}
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(text)
			}
			cells = append(cells, buf.String())
		}
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}
