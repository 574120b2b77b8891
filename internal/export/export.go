// Package export writes company records as CSV, XLSX or JSON and reads URL
// lists from the same tabular formats.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// Format names an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DefaultPath is where a lookup writes its export when no path is given.
const DefaultPath = "companies_info.csv"

// Options control which columns an export carries.
type Options struct {
	// WithMarket adds the ticker and market data columns.
	WithMarket bool
}

// ParseFormat validates a format name. An empty name means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Columns returns the header of an export.
func Columns(opts Options) []string {
	cols := append([]string{}, model.SchemaFields...)
	if opts.WithMarket {
		cols = append(cols, model.FieldTicker)
		cols = append(cols, model.MarketKeys...)
	}
	return cols
}

// Row returns the display values of rec in Columns order.
func Row(rec model.Record, opts Options) []string {
	row := make([]string, 0, len(model.SchemaFields)+1+len(model.MarketKeys))
	for _, f := range model.SchemaFields {
		row = append(row, rec.String(f))
	}
	if opts.WithMarket {
		ticker := rec.Symbol
		if ticker == "" {
			ticker = rec.String(model.FieldTicker)
		}
		row = append(row, ticker)
		for _, k := range model.MarketKeys {
			row = append(row, rec.Market.FormatMarket(k))
		}
	}
	return row
}

// WriteFile writes records to path in the given format.
func WriteFile(path string, format Format, records []model.Record, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()

	switch format {
	case FormatXLSX:
		return WriteXLSX(f, records, opts)
	case FormatJSON:
		return WriteJSON(f, records, opts)
	default:
		return WriteCSV(f, records, opts)
	}
}
