package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadURLs reads company URLs from the first column of a file. XLSX files
// are read from their first sheet; anything else is parsed as CSV with either
// ',' or ';' separators. A header cell that is not a URL is skipped, as are
// blank cells.
func ReadURLs(path string) ([]string, error) {
	var cells []string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		cells, err = firstColumnXLSX(path)
	} else {
		cells, err = firstColumnCSV(path)
	}
	if err != nil {
		return nil, err
	}

	var urls []string
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if i == 0 && !looksLikeURL(c) {
			continue
		}
		urls = append(urls, c)
	}
	return urls, nil
}

func firstColumnXLSX(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}
	var cells []string
	for _, row := range f.Sheets[0].Rows {
		if row == nil || len(row.Cells) == 0 {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, row.Cells[0].String())
	}
	return cells, nil
}

func firstColumnCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var cells []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return cells, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		first := rec[0]
		// Comma-separated files arrive as a single field.
		if i := strings.IndexByte(first, ','); i >= 0 {
			first = first[:i]
		}
		cells = append(cells, first)
	}
}

func looksLikeURL(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "://") || (strings.Contains(s, ".") && !strings.Contains(s, " "))
}
