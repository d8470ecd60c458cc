package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveUpsertsByIssueKey(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.Save(ctx, []types.RawRecord{
		{"issue_key": "CS-1", "conversation_end": "2025-03-01T10:00:00Z", "agent_score": 3},
		{"issue_key": "CS-2", "conversation_end": "2025-03-05T10:00:00Z"},
		{"agent_authors": "ann"},
		{"agent_authors": "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = st.Save(ctx, []types.RawRecord{
		{"issue_key": "CS-1", "conversation_end": "2025-03-02T10:00:00Z", "agent_score": 5},
	})
	require.NoError(t, err)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	recs, err := st.Load(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "CS-1", recs[0]["issue_key"])
	assert.Equal(t, json.Number("5"), recs[0]["agent_score"])
}

func TestSQLite_LoadSince(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Save(ctx, []types.RawRecord{
		{"issue_key": "CS-1", "conversation_end": "2025-03-01T10:00:00Z"},
		{"issue_key": "CS-2", "conversation_start": "2025-03-05T10:00:00Z"},
		{"issue_key": "CS-3"},
	})
	require.NoError(t, err)

	recs, err := st.Load(ctx, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "CS-2", recs[0]["issue_key"])
	require.NoError(t, st.Ping(ctx))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"issue_key":"CS-1"}]`), 0o600))

	recs, err := FileSource{Path: path}.Load(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = FileSource{Path: strings.TrimSuffix(path, ".json") + ".txt"}.Load(context.Background(), time.Time{})
	assert.Error(t, err)
}
