// Package store persists canonical company records.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	SourceURL string `json:"source_url,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// DefaultListLimit caps ListRecords when the filter sets no limit.
const DefaultListLimit = 100

// StoredRecord is a persisted record with its row metadata.
type StoredRecord struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Record    model.Record `json:"record"`
}

// Store defines the persistence interface for lookup results. One row is
// appended per lookup; nothing is updated in place.
type Store interface {
	// SaveRecord appends a record in its own transaction and returns its id.
	SaveRecord(ctx context.Context, rec model.Record) (string, error)
	// LatestByURL returns the newest record for a source URL, or nil when
	// none exists.
	LatestByURL(ctx context.Context, sourceURL string) (*model.Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]StoredRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// insertColumns is the column order of every insert.
const insertColumns = `id, name, website, ownership, country, brief_description, services, headcount, revenue, ticker, market, record, source_url, secondary_url, created_at`

// selectColumns is the column order scanned by decodeRow.
const selectColumns = `id, ticker, market, record, source_url, secondary_url, created_at`

// insertArgs flattens a record into insert arguments in insertColumns order.
func insertArgs(id string, rec model.Record, now time.Time) ([]any, error) {
	values := rec.Values
	if values == nil {
		values = model.NewRecord().Values
	}
	recordJSON, err := json.Marshal(values)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal record")
	}

	// market stays NULL when the record was not enriched.
	var market any
	if len(rec.Market) > 0 {
		b, err := json.Marshal(rec.Market)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal market")
		}
		market = string(b)
	}

	args := make([]any, 0, 15)
	args = append(args, id)
	for _, f := range model.SchemaFields {
		args = append(args, rec.String(f))
	}
	args = append(args, rec.Symbol, market, string(recordJSON), rec.SourceURL, rec.SecondaryURL, now)
	return args, nil
}

// decodeRow rebuilds a record from its stored JSON columns.
func decodeRow(id, ticker string, marketJSON, recordJSON []byte, sourceURL, secondaryURL string, createdAt time.Time) (StoredRecord, error) {
	rec := model.NewRecord()
	if len(recordJSON) > 0 {
		var values map[string]any
		if err := json.Unmarshal(recordJSON, &values); err != nil {
			return StoredRecord{}, eris.Wrapf(err, "store: unmarshal record %s", id)
		}
		for k, v := range values {
			if model.IsField(k) {
				rec.Values[k] = v
			}
		}
	}
	if len(marketJSON) > 0 {
		if err := json.Unmarshal(marketJSON, &rec.Market); err != nil {
			return StoredRecord{}, eris.Wrapf(err, "store: unmarshal market %s", id)
		}
	}
	rec.Symbol = ticker
	rec.SourceURL = sourceURL
	rec.SecondaryURL = secondaryURL
	return StoredRecord{ID: id, CreatedAt: createdAt, Record: rec}, nil
}

func listLimit(filter RecordFilter) int {
	if filter.Limit <= 0 {
		return DefaultListLimit
	}
	return filter.Limit
}
