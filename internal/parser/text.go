package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/chalimba/papertree/internal/paper"
)

// TextParser handles plain text files. Each blank-line-separated
// paragraph becomes one block.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]paper.Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var bb blockBuilder
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			bb.paragraph(current.String(), 0)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return bb.blocks, nil
}
