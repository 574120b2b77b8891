package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// WriteJSON writes records as an indented JSON array. Each element holds the
// schema fields, plus ticker and market when opts.WithMarket is set.
func WriteJSON(w io.Writer, records []model.Record, opts Options) error {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		obj := make(map[string]any, len(model.Fields)+3)
		for _, f := range model.SchemaFields {
			obj[f] = rec.Get(f)
		}
		obj["source_url"] = rec.SourceURL
		if rec.SecondaryURL != "" {
			obj["secondary_url"] = rec.SecondaryURL
		}
		if opts.WithMarket {
			ticker := rec.Symbol
			if ticker == "" {
				ticker = rec.String(model.FieldTicker)
			}
			obj[model.FieldTicker] = ticker
			if len(rec.Market) > 0 {
				obj["market"] = rec.Market
			}
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "export: encode json")
}
