package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/db"
	"github.com/sells-group/company-profiler/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Open(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller owns its lifecycle.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	market            JSONB,
	record            JSONB NOT NULL,
	source_url        TEXT NOT NULL,
	secondary_url     TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRecord inserts one record inside its own transaction. Begin acquires a
// dedicated pool connection, released on commit or rollback.
func (s *PostgresStore) SaveRecord(ctx context.Context, rec model.Record) (string, error) {
	id := uuid.New().String()
	args, err := insertArgs(id, rec, time.Now().UTC())
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO company_records (`+insertColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		args...,
	); err != nil {
		return "", eris.Wrap(err, "postgres: insert record")
	}
	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "postgres: commit")
	}
	return id, nil
}

func (s *PostgresStore) LatestByURL(ctx context.Context, sourceURL string) (*model.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM company_records WHERE source_url = $1 ORDER BY created_at DESC LIMIT 1`,
		sourceURL,
	)
	sr, err := scanPostgresRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest record for %s", sourceURL)
	}
	return &sr.Record, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]StoredRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM company_records WHERE 1=1`
	var args []any
	argN := 1

	if filter.SourceURL != "" {
		query += fmt.Sprintf(` AND source_url = $%d`, argN)
		args = append(args, filter.SourceURL)
		argN++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argN)
	args = append(args, listLimit(filter))
	argN++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		sr, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		out = append(out, sr)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func scanPostgresRecord(row pgx.Row) (StoredRecord, error) {
	var (
		id, ticker, sourceURL, secondaryURL string
		marketJSON, recordJSON              []byte
		createdAt                           time.Time
	)
	if err := row.Scan(&id, &ticker, &marketJSON, &recordJSON, &sourceURL, &secondaryURL, &createdAt); err != nil {
		return StoredRecord{}, err
	}
	return decodeRow(id, ticker, marketJSON, recordJSON, sourceURL, secondaryURL, createdAt)
}
