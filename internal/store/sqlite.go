package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/company-profiler/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS company_records (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	ownership         TEXT NOT NULL DEFAULT '',
	country           TEXT NOT NULL DEFAULT '',
	brief_description TEXT NOT NULL DEFAULT '',
	services          TEXT NOT NULL DEFAULT '',
	headcount         TEXT NOT NULL DEFAULT '',
	revenue           TEXT NOT NULL DEFAULT '',
	ticker            TEXT NOT NULL DEFAULT '',
	market            TEXT,
	record            TEXT NOT NULL,
	source_url        TEXT NOT NULL,
	secondary_url     TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecord inserts one record on a dedicated connection inside its own
// transaction. The connection is released on return.
func (s *SQLiteStore) SaveRecord(ctx context.Context, rec model.Record) (id string, err error) {
	id = uuid.New().String()
	args, err := insertArgs(id, rec, time.Now().UTC())
	if err != nil {
		return "", err
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: acquire connection")
	}
	defer conn.Close() //nolint:errcheck

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO company_records (`+insertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	); err != nil {
		return "", eris.Wrap(err, "sqlite: insert record")
	}
	if err = tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	return id, nil
}

func (s *SQLiteStore) LatestByURL(ctx context.Context, sourceURL string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM company_records WHERE source_url = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		sourceURL,
	)
	sr, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest record for %s", sourceURL)
	}
	return &sr.Record, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]StoredRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM company_records WHERE 1=1`
	var args []any

	if filter.SourceURL != "" {
		query += ` AND source_url = ?`
		args = append(args, filter.SourceURL)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredRecord
	for rows.Next() {
		sr, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		out = append(out, sr)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row scanner) (StoredRecord, error) {
	var (
		id, ticker, recordJSON, sourceURL, secondaryURL string
		marketJSON                                      sql.NullString
		createdAt                                       time.Time
	)
	if err := row.Scan(&id, &ticker, &marketJSON, &recordJSON, &sourceURL, &secondaryURL, &createdAt); err != nil {
		return StoredRecord{}, err
	}
	var market []byte
	if marketJSON.Valid {
		market = []byte(marketJSON.String)
	}
	return decodeRow(id, ticker, market, []byte(recordJSON), sourceURL, secondaryURL, createdAt)
}
