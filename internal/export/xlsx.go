package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/company-profiler/internal/model"
)

// SheetName is the worksheet records are written to.
const SheetName = "Companies"

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []model.Record, opts Options) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, Columns(opts))
	for _, rec := range records {
		addRow(sheet, Row(rec, opts))
	}

	return eris.Wrap(f.Write(w), "xlsx: write")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
