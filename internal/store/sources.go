package store

import (
	"context"
	"time"

	"convo-insights-go/internal/dataset"
	"convo-insights-go/internal/types"
)

// FileSource loads an export from disk. since is ignored; windowing happens
// after normalization.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context, _ time.Time) ([]types.RawRecord, error) {
	return dataset.LoadFile(s.Path)
}

// RemoteSource loads rows from a REST endpoint. since is ignored.
type RemoteSource struct {
	Options dataset.RemoteOptions
}

func (s RemoteSource) Load(ctx context.Context, _ time.Time) ([]types.RawRecord, error) {
	return dataset.FetchRemote(ctx, s.Options)
}
