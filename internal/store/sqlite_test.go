package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-profiler/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	rec := sampleRecord()
	rec.Symbol = "ACME"
	rec.Market = model.MarketData{model.MarketPrice: 42, model.MarketChangePercent: -1.5}

	id, err := s.SaveRecord(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.LatestByURL(ctx, rec.SourceURL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.String(model.FieldName))
	assert.Equal(t, "pumps, valves", got.String(model.FieldServices))
	assert.Equal(t, "ACME", got.Symbol)
	assert.Equal(t, 42.0, got.Market[model.MarketPrice])
	assert.Equal(t, -1.5, got.Market[model.MarketChangePercent])
	assert.Equal(t, rec.SecondaryURL, got.SecondaryURL)
	assert.Len(t, got.Values, len(model.Fields))
}

func TestSQLite_LatestByURL_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	got, err := s.LatestByURL(context.Background(), "https://missing.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_AppendsOneRowPerLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	first := sampleRecord()
	_, err := s.SaveRecord(ctx, first)
	require.NoError(t, err)

	second := sampleRecord()
	second.Values[model.FieldName] = "Acme Corporation"
	_, err = s.SaveRecord(ctx, second)
	require.NoError(t, err)

	latest, err := s.LatestByURL(ctx, first.SourceURL)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Acme Corporation", latest.String(model.FieldName))

	all, err := s.ListRecords(ctx, RecordFilter{SourceURL: first.SourceURL})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_NotEnrichedHasNoMarket(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.SaveRecord(ctx, sampleRecord())
	require.NoError(t, err)

	got, err := s.LatestByURL(ctx, "https://acme.example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Market)
	assert.Empty(t, got.Symbol)
}

func TestSQLite_ListRecords_Filters(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		rec := sampleRecord()
		rec.SourceURL = u
		_, err := s.SaveRecord(ctx, rec)
		require.NoError(t, err)
	}

	all, err := s.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, sr := range all {
		assert.NotEmpty(t, sr.ID)
		assert.False(t, sr.CreatedAt.IsZero())
	}

	limited, err := s.ListRecords(ctx, RecordFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	offset, err := s.ListRecords(ctx, RecordFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, offset, 1)

	byURL, err := s.ListRecords(ctx, RecordFilter{SourceURL: "https://b.example"})
	require.NoError(t, err)
	require.Len(t, byURL, 1)
	assert.Equal(t, "https://b.example", byURL[0].Record.SourceURL)
}

func TestSQLite_SaveRecord_CancelledContext(t *testing.T) {
	s := newTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveRecord(ctx, sampleRecord())
	require.Error(t, err)

	all, err := s.ListRecords(context.Background(), RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
