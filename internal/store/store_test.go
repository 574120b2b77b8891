package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-profiler/internal/model"
)

func sampleRecord() model.Record {
	rec := model.NewRecord()
	rec.Values[model.FieldName] = "Acme Corp"
	rec.Values[model.FieldWebsite] = "https://acme.example"
	rec.Values[model.FieldOwnership] = "Private"
	rec.Values[model.FieldCountry] = "Spain"
	rec.Values[model.FieldBriefDescription] = "Industrial pumps."
	rec.Values[model.FieldServices] = []any{"pumps", "valves"}
	rec.Values[model.FieldHeadcount] = "51-200"
	rec.SourceURL = "https://acme.example"
	rec.SecondaryURL = "https://www.linkedin.com/company/acme"
	return rec
}

func TestInsertArgs(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := sampleRecord()
	rec.Symbol = "ACME"
	rec.Market = model.MarketData{model.MarketPrice: 12.5}

	args, err := insertArgs("id-1", rec, now)
	require.NoError(t, err)
	require.Len(t, args, 15)

	assert.Equal(t, "id-1", args[0])
	assert.Equal(t, "Acme Corp", args[1])
	assert.Equal(t, "pumps, valves", args[6])
	assert.Equal(t, "", args[8])
	assert.Equal(t, "ACME", args[9])
	assert.JSONEq(t, `{"price":12.5}`, args[10].(string))
	assert.Contains(t, args[11].(string), `"name":"Acme Corp"`)
	assert.Equal(t, "https://acme.example", args[12])
	assert.Equal(t, "https://www.linkedin.com/company/acme", args[13])
	assert.Equal(t, now, args[14])
}

func TestInsertArgs_NoMarket(t *testing.T) {
	args, err := insertArgs("id-2", sampleRecord(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, args[10])
}

func TestInsertArgs_NilValues(t *testing.T) {
	args, err := insertArgs("id-3", model.Record{SourceURL: "https://x.example"}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, args[11].(string), `"name":null`)
}

func TestDecodeRow(t *testing.T) {
	created := time.Now().UTC()
	sr, err := decodeRow("id-1", "ACME",
		[]byte(`{"price":10,"volume":2000}`),
		[]byte(`{"name":"Acme","services":["a","b"],"bogus":"dropped"}`),
		"https://acme.example", "", created)
	require.NoError(t, err)

	assert.Equal(t, "id-1", sr.ID)
	assert.Equal(t, created, sr.CreatedAt)
	assert.Equal(t, "Acme", sr.Record.String(model.FieldName))
	assert.Equal(t, "a, b", sr.Record.String(model.FieldServices))
	assert.NotContains(t, sr.Record.Values, "bogus")
	assert.Contains(t, sr.Record.Values, model.FieldRevenue)
	assert.Nil(t, sr.Record.Values[model.FieldRevenue])
	assert.Equal(t, 10.0, sr.Record.Market[model.MarketPrice])
	assert.Equal(t, "ACME", sr.Record.Symbol)
}

func TestDecodeRow_BadJSON(t *testing.T) {
	_, err := decodeRow("id-1", "", nil, []byte(`{`), "u", "", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: unmarshal record")

	_, err = decodeRow("id-1", "", []byte(`[`), []byte(`{}`), "u", "", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: unmarshal market")
}

func TestListLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, listLimit(RecordFilter{}))
	assert.Equal(t, DefaultListLimit, listLimit(RecordFilter{Limit: -3}))
	assert.Equal(t, 7, listLimit(RecordFilter{Limit: 7}))
}
