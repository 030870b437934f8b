package marks

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RowsFromHTML extracts cell text from table markup. Formats that
// capture tables as HTML (docx run rendering, raw html uploads) go
// through here before the cascade scans them.
func RowsFromHTML(html string) [][]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
