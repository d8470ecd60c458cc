package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"convo-insights-go/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Source supplies raw conversation records whose reference instant is at or
// after since. A zero since loads everything.
type Source interface {
	Load(ctx context.Context, since time.Time) ([]types.RawRecord, error)
}

// Pool is the subset of pgxpool.Pool the Postgres source needs.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

func decodeRecord(payload []byte) (types.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var rec types.RawRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, eris.Wrap(err, "decode record")
	}
	return rec, nil
}
