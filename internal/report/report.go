// Package report renders lookup results as terminal tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sells-group/company-profiler/internal/model"
)

// MaxCellWidth is the widest a table cell is rendered, in runes.
const MaxCellWidth = 40

var headerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7C3AED")).
	Bold(true).
	Padding(0, 1)

var (
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
)

// Options control the rendered columns.
type Options struct {
	WithMarket bool
}

var baseColumns = []string{
	model.FieldName,
	model.FieldWebsite,
	model.FieldOwnership,
	model.FieldCountry,
	model.FieldServices,
	model.FieldHeadcount,
	model.FieldRevenue,
}

var marketColumns = []string{"ticker", model.MarketPrice, model.MarketChangePercent, model.MarketCap}

// Headers returns the table header for opts.
func Headers(opts Options) []string {
	h := append([]string{}, baseColumns...)
	if opts.WithMarket {
		h = append(h, marketColumns...)
	}
	return h
}

// Cells returns the display row of rec for opts.
func Cells(rec model.Record, opts Options) []string {
	cells := make([]string, 0, len(baseColumns)+len(marketColumns))
	for _, f := range baseColumns {
		cells = append(cells, Truncate(rec.String(f), MaxCellWidth))
	}
	if opts.WithMarket {
		cells = append(cells,
			rec.Symbol,
			rec.Market.FormatMarket(model.MarketPrice),
			formatPercent(rec.Market, model.MarketChangePercent),
			rec.Market.FormatMarket(model.MarketCap),
		)
	}
	return cells
}

// Table renders records as a bordered table.
func Table(records []model.Record, opts Options) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Cells(rec, opts))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(Headers(opts)...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// Write prints the records of results as a table followed by a list of the
// failed steps. URLs that produced no record are listed as skipped.
func Write(w io.Writer, results []model.LookupResult, opts Options) error {
	var records []model.Record
	var skipped []string
	for _, r := range results {
		if r.Record == nil {
			skipped = append(skipped, r.URL)
			continue
		}
		records = append(records, *r.Record)
	}

	var b strings.Builder
	if len(records) == 0 {
		b.WriteString(mutedStyle.Render("No company information was extracted."))
		b.WriteString("\n")
	} else {
		b.WriteString(titleStyle.Render("Final Extracted Company Information"))
		b.WriteString("\n")
		b.WriteString(Table(records, opts))
		b.WriteString("\n")
	}

	for _, u := range skipped {
		b.WriteString(errorStyle.Render(fmt.Sprintf("skipped %s: could not retrieve content", u)))
		b.WriteString("\n")
	}
	for _, r := range results {
		if r.Record == nil {
			continue
		}
		for _, s := range r.Steps {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%s: %s failed (%s): %s", r.URL, s.Step, s.Kind, s.Err)))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Truncate shortens s to at most width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func formatPercent(md model.MarketData, key string) string {
	v, ok := md[key]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", v)
}
