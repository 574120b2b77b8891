package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// Delimiter separates CSV fields. Free-text fields often contain commas.
const Delimiter = ';'

// WriteCSV writes a header and one semicolon-separated row per record.
func WriteCSV(w io.Writer, records []model.Record, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(Columns(opts)); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec, opts)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
