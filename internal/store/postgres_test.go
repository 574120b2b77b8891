package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-profiler/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

var recordColumns = []string{"id", "ticker", "market", "record", "source_url", "secondary_url", "created_at"}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS company_records`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectPing()

	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRecord(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO company_records`).
		WithArgs(anyArgs(15)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := s.SaveRecord(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRecord_InsertErrorRollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO company_records`).
		WithArgs(anyArgs(15)...).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.SaveRecord(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRecord_BeginError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := s.SaveRecord(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: begin")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRecord_CommitError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO company_records`).
		WithArgs(anyArgs(15)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := s.SaveRecord(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: commit")
}

func TestPostgresStore_LatestByURL(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, ticker, market, record, source_url, secondary_url, created_at FROM company_records WHERE source_url = \$1`).
		WithArgs("https://acme.example").
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(
			"id-1", "ACME",
			[]byte(`{"price":12.5}`),
			[]byte(`{"name":"Acme Corp","services":["pumps"]}`),
			"https://acme.example", "https://www.linkedin.com/company/acme", created,
		))

	rec, err := s.LatestByURL(context.Background(), "https://acme.example")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Acme Corp", rec.String(model.FieldName))
	assert.Equal(t, "pumps", rec.String(model.FieldServices))
	assert.Equal(t, 12.5, rec.Market[model.MarketPrice])
	assert.Equal(t, "ACME", rec.Symbol)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestByURL_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM company_records WHERE source_url = \$1`).
		WithArgs("https://unknown.example").
		WillReturnError(pgx.ErrNoRows)

	rec, err := s.LatestByURL(context.Background(), "https://unknown.example")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestByURL_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM company_records`).
		WithArgs("https://acme.example").
		WillReturnError(errors.New("connection reset"))

	_, err := s.LatestByURL(context.Background(), "https://acme.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: latest record")
}

func TestPostgresStore_ListRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM company_records WHERE 1=1 AND source_url = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("https://acme.example", 10, 5).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow("id-2", "", []byte(nil), []byte(`{"name":"Acme 2"}`), "https://acme.example", "", now).
			AddRow("id-1", "", []byte(nil), []byte(`{"name":"Acme 1"}`), "https://acme.example", "", now.Add(-time.Hour)))

	out, err := s.ListRecords(context.Background(), RecordFilter{SourceURL: "https://acme.example", Limit: 10, Offset: 5})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "id-2", out[0].ID)
	assert.Equal(t, "Acme 1", out[1].Record.String(model.FieldName))
	assert.Empty(t, out[0].Record.Market)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecords_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$1$`).
		WithArgs(DefaultListLimit).
		WillReturnRows(pgxmock.NewRows(recordColumns))

	out, err := s.ListRecords(context.Background(), RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecords_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM company_records`).
		WithArgs(DefaultListLimit).
		WillReturnError(errors.New("timeout"))

	_, err := s.ListRecords(context.Background(), RecordFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list records")
}

func TestPostgresStore_CloseWithoutOwnership(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	assert.NoError(t, s.Close())
}
