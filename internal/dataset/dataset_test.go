package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"convo-insights-go/internal/normalize"
	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffIssue Key, Agent Authors ,contact_reason\nCS-1,ann;bob,Billing\n,,\nCS-2,carl\n"
	recs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "CS-1", recs[0]["issue_key"])
	assert.Equal(t, "ann;bob", recs[0]["agent_authors"])
	assert.Equal(t, "carl", recs[1]["agent_authors"])
	_, ok := recs[1]["contact_reason"]
	assert.False(t, ok)
}

func TestReadJSON(t *testing.T) {
	recs, err := ReadJSON(strings.NewReader(`[{"issue_key":"CS-1","agent_score":4}]`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, json.Number("4"), recs[0]["agent_score"])

	recs, err = ReadJSON(strings.NewReader(`{"rows":[{"issue_key":"CS-1"},{"issue_key":"CS-2"}]}`))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = ReadJSON(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = ReadJSON(strings.NewReader(`{"rows": 3}`))
	assert.Error(t, err)
}

func TestLoadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"issue_key", "Agent Authors", "agent_score"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"CS-1", "ann", "4"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ann", recs[0]["agent_authors"])

	row := normalize.Normalize(recs[0])
	assert.Equal(t, 4.0, *row.AgentScore)
}

func TestLoadFileCSVAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("issue_key\nCS-9\n"), 0o600))

	recs, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "CS-9", recs[0]["issue_key"])

	_, err = LoadFile(filepath.Join(dir, "export.parquet"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFetchRemoteRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"issue_key":"CS-1"}]`))
	}))
	defer srv.Close()

	recs, err := FetchRemote(context.Background(), RemoteOptions{URL: srv.URL, APIKey: "secret", MaxElapsed: 5 * time.Second})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchRemoteClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := FetchRemote(context.Background(), RemoteOptions{URL: srv.URL, MaxElapsed: 5 * time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSummarize(t *testing.T) {
	rows := normalize.All([]types.RawRecord{
		{"issue_key": "CS-1", "agent_authors": "ann;bob", "customer_authors": "c1", "conversation_end": "2025-03-02T10:00:00Z", "status": "Resolved", "contact_reason": "Billing", "custom_field_hub": "north"},
		{"issue_key": "CS-2", "agent_authors": "ann", "conversation_start": "2025-03-01T10:00:00Z", "contact_reason": "Billing"},
		{"issue_key": "CS-3"},
	})

	ds := Summarize(rows)
	assert.Equal(t, 3, ds.TotalConversations)
	assert.Equal(t, 1, ds.Resolved)
	assert.Equal(t, 1, ds.Undated)
	assert.Equal(t, 2, ds.DistinctAgents)
	assert.Equal(t, 1, ds.DistinctCustomers)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *ds.Earliest)
	assert.Equal(t, time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), *ds.Latest)
	assert.Equal(t, map[string]int{"north": 1}, ds.ByHub)
	assert.Equal(t, []ReasonCount{{Reason: "Billing", Count: 2}, {Reason: types.UnspecifiedReason, Count: 1}}, ds.TopReasons)
}
