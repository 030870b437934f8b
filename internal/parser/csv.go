package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/chalimba/papertree/internal/paper"
)

// CSVParser handles CSV uploads, which arrive as mark schedules or
// question banks exported from spreadsheets. The whole sheet becomes a
// single table block.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]paper.Block, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var bb blockBuilder
	bb.table(&paper.Table{Rows: records}, 0)
	return bb.blocks, nil
}
