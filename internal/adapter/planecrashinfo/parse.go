package planecrashinfo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseYears reads the year links from the second table of database.htm.
// Empty and non-numeric cells are skipped.
func parseYears(doc *goquery.Document) ([]int, error) {
	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, errors.New("database index: year table missing")
	}

	var years []int
	tables.Eq(1).Find("td").Each(func(_ int, cell *goquery.Selection) {
		if y, err := strconv.Atoi(cellText(cell)); err == nil {
			years = append(years, y)
		}
	})
	if len(years) == 0 {
		return nil, errors.New("database index: no years found")
	}
	return years, nil
}

// countAccidentRows counts the rows of the first table, minus the header row.
func countAccidentRows(doc *goquery.Document) (int, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return 0, errors.New("year page: accident table missing")
	}
	rows := table.Find("tr").Length()
	if rows == 0 {
		return 0, nil
	}
	return rows - 1, nil
}

// parseDetailTable reads the label/value rows of an accident page. The first
// row is a caption and is skipped.
func parseDetailTable(doc *goquery.Document) (map[string]string, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("detail table missing")
	}

	fields := make(map[string]string)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := cellText(cells.Eq(0))
		if label == "" {
			return
		}
		fields[label] = cellText(cells.Eq(1))
	})
	if len(fields) == 0 {
		return nil, errors.New("detail table empty")
	}
	return fields, nil
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
