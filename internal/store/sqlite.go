package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"convo-insights-go/internal/normalize"
	"convo-insights-go/internal/types"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// referenceLayout sorts lexically in time order.
const referenceLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps imported raw records locally, keyed by issue key.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS conversations (
	issue_key    TEXT PRIMARY KEY,
	reference_at TEXT,
	payload      TEXT NOT NULL,
	imported_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_conversations_reference_at ON conversations(reference_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts records by issue key. Records without a key get a generated one
// so they do not overwrite each other.
func (s *SQLiteStore) Save(ctx context.Context, raws []types.RawRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO conversations (issue_key, reference_at, payload)
VALUES (?, ?, ?)
ON CONFLICT(issue_key) DO UPDATE SET
	reference_at = excluded.reference_at,
	payload      = excluded.payload,
	imported_at  = datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	for _, raw := range raws {
		row := normalize.Normalize(raw)
		key := row.IssueKey
		if key == types.UnknownIssueKey {
			key = types.UnknownIssueKey + "-" + uuid.NewString()
		}

		var ref any
		if t := row.ReferenceTime(); t != nil {
			ref = t.UTC().Format(referenceLayout)
		}

		payload, err := json.Marshal(raw)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: encode %s", key)
		}
		if _, err := stmt.ExecContext(ctx, key, ref, string(payload)); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(raws), nil
}

func (s *SQLiteStore) Load(ctx context.Context, since time.Time) ([]types.RawRecord, error) {
	query := `SELECT payload FROM conversations ORDER BY issue_key`
	var args []any
	if !since.IsZero() {
		query = `SELECT payload FROM conversations WHERE reference_at >= ? ORDER BY issue_key`
		args = append(args, since.UTC().Format(referenceLayout))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load conversations")
	}
	defer rows.Close()

	var out []types.RawRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan conversation")
		}
		rec, err := decodeRecord([]byte(payload))
		if err != nil {
			return nil, eris.Wrap(err, "sqlite")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate conversations")
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM conversations`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}
