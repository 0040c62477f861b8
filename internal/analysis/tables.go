package analysis

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableStructure is the cell-level content of one HTML table.
type TableStructure struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

var cellWhitespaceRE = regexp.MustCompile(`\s+`)

// ExtractTableStructure pulls header and data-row text out of every table
// in an HTML fragment. Rows containing th cells count as header rows and
// are excluded from Rows. Unparseable input yields nil.
func ExtractTableStructure(htmlContent string) []TableStructure {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var tables []TableStructure
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var ts TableStructure
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			ts.Headers = append(ts.Headers, cleanCellText(th.Text()))
		})
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.Find("th").Length() > 0 {
				return
			}
			var row []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				row = append(row, cleanCellText(td.Text()))
			})
			if len(row) > 0 {
				ts.Rows = append(ts.Rows, row)
			}
		})
		tables = append(tables, ts)
	})
	return tables
}

func cleanCellText(s string) string {
	return strings.TrimSpace(cellWhitespaceRE.ReplaceAllString(s, " "))
}
