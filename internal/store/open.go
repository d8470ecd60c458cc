package store

import (
	"context"
	"time"

	"convo-insights-go/internal/config"
	"convo-insights-go/internal/dataset"
	"convo-insights-go/internal/normalize"
	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
)

const remoteMaxElapsed = 2 * time.Minute

// Open builds the source selected by cfg.Kind. The returned close func is
// never nil.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SourceFile:
		return FileSource{Path: cfg.Path}, noop, nil

	case config.SourceSQLite:
		st, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, noop, err
		}
		return st, st.Close, nil

	case config.SourcePostgres:
		pg, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil

	case config.SourceRemote:
		return RemoteSource{Options: dataset.RemoteOptions{
			URL:        cfg.RemoteURL,
			APIKey:     cfg.APIKey,
			Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
			MaxElapsed: remoteMaxElapsed,
		}}, noop, nil
	}
	return nil, noop, eris.Errorf("unknown source kind %q", cfg.Kind)
}

// LoadRows loads and normalizes every record at or after since.
func LoadRows(ctx context.Context, src Source, since time.Time) ([]types.ConversationRow, error) {
	raws, err := src.Load(ctx, since)
	if err != nil {
		return nil, eris.Wrap(err, "load records")
	}
	return normalize.All(raws), nil
}
