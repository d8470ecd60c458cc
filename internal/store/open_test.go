package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"convo-insights-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileSourceLoadsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	csv := "Issue Key,Agent Authors,Conversation End,Status\nCS-1,ann,2025-03-10T11:00:00Z,Done\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	src, closeFn, err := Open(context.Background(), config.SourceConfig{Kind: config.SourceFile, Path: path})
	require.NoError(t, err)
	defer closeFn() //nolint:errcheck

	rows, err := LoadRows(context.Background(), src, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CS-1", rows[0].IssueKey)
	assert.True(t, rows[0].Resolved)
	assert.Equal(t, []string{"ann"}, rows[0].AgentList)
}

func TestOpenSQLiteMigrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "insights.db")

	src, closeFn, err := Open(ctx, config.SourceConfig{Kind: config.SourceSQLite, Path: path})
	require.NoError(t, err)
	defer closeFn() //nolint:errcheck

	st, ok := src.(*SQLiteStore)
	require.True(t, ok)
	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenRemoteAndUnknown(t *testing.T) {
	src, _, err := Open(context.Background(), config.SourceConfig{
		Kind:        config.SourceRemote,
		RemoteURL:   "https://example.com/rows",
		TimeoutSecs: 5,
	})
	require.NoError(t, err)
	remote, ok := src.(RemoteSource)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, remote.Options.Timeout)

	_, closeFn, err := Open(context.Background(), config.SourceConfig{Kind: "ftp"})
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}
