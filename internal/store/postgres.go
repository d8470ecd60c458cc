package store

import (
	"context"
	"time"

	"convo-insights-go/internal/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PostgresSource reads processed conversations as JSON documents so the
// normalizer sees the same loose shape a file export would give it.
type PostgresSource struct {
	pool    Pool
	closeFn func()
}

const loadProcessedConversations = `SELECT to_jsonb(t) FROM jira_processed_conversations t
WHERE coalesce(conversation_end, conversation_start) >= $1
ORDER BY issue_key`

// NewPostgres opens a pool and verifies connectivity.
func NewPostgres(ctx context.Context, connString string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresSource{pool: pool, closeFn: pool.Close}, nil
}

func (s *PostgresSource) Load(ctx context.Context, since time.Time) ([]types.RawRecord, error) {
	rows, err := s.pool.Query(ctx, loadProcessedConversations, since.UTC())
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load conversations")
	}
	defer rows.Close()

	var out []types.RawRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan conversation")
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, eris.Wrap(err, "postgres")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate conversations")
	}
	return out, nil
}

// Ping checks the pool.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresSource) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
