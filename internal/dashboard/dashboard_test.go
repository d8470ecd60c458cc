package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/normalize"
	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []types.ConversationRow {
	return normalize.All([]types.RawRecord{
		{
			"issue_key":            "CS-1",
			"agent_authors":        "ann;carl",
			"customer_authors":     "cust-1",
			"conversation_end":     "2025-03-10T11:00:00Z",
			"status":               "Done",
			"agent_score":          4,
			"customer_score":       5,
			"contact_reason":       "Billing - Refund",
			"improvement_tip":      "Confirm the refund timeline",
			"customer_abuse_count": 3,
		},
		{
			"issue_key":        "CS-2",
			"agent_authors":    "ann",
			"customer_authors": "cust-2",
			"conversation_end": "2025-03-09T08:00:00Z",
			"agent_score":      3,
			"contact_reason":   "Shipping - Late",
		},
		{
			"issue_key":           "CS-3",
			"agent_authors":       "bea",
			"conversation_start":  "2025-03-01T08:00:00Z",
			"conversation_rating": 2,
			"contact_reason":      "Billing - Invoice",
		},
	})
}

func TestBuild(t *testing.T) {
	roles := escalation.NewRoleMapping(map[string]types.Role{
		"ann":  types.RoleTier1,
		"carl": types.RoleTier2,
	})

	d, err := Build(context.Background(), fixture(), Options{Window: types.Window7d, Roles: roles})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC), d.Now)
	assert.Equal(t, escalation.MetricTier, d.Metric)
	assert.Equal(t, 3, d.TotalRows)
	assert.Equal(t, 2, d.WindowTotal)

	require.Len(t, d.ResolvedRate, 3)
	assert.Equal(t, 2, d.ResolvedRate[1].Total)
	assert.Equal(t, 1, d.Escalation[1].TierCount)

	require.Len(t, d.Ranking, 2)
	assert.Equal(t, "carl", d.Ranking[0].Agent)
	assert.InDelta(t, 4.5, d.Ranking[0].MeanScore, 1e-9)
	assert.Equal(t, "ann", d.Ranking[1].Agent)
	assert.InDelta(t, 3.75, d.Ranking[1].MeanScore, 1e-9)

	require.Len(t, d.Matrix, 2)
	assert.Equal(t, 1, d.Matrix[0].EscalatedCount)

	assert.Equal(t, 2, d.Reasons.Total)
	assert.Len(t, d.ReasonsV2.Topics, 2)
	assert.Len(t, d.ResolvedTimeline.Labels, 7)

	require.Len(t, d.CustomerToxicity, 1)
	assert.Equal(t, "cust-1", d.CustomerToxicity[0].Name)
	assert.Equal(t, 1, d.Tips.TotalTips)

	_, err = json.Marshal(d)
	require.NoError(t, err)
}

func TestBuildIsDeterministic(t *testing.T) {
	rows := fixture()
	a, err := Build(context.Background(), rows, Options{})
	require.NoError(t, err)
	b, err := Build(context.Background(), []types.ConversationRow{rows[2], rows[0], rows[1]}, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Ranking, b.Ranking)
	assert.Equal(t, a.Matrix, b.Matrix)
	assert.Equal(t, a.Reasons, b.Reasons)
	assert.Equal(t, a.CustomerToxicity, b.CustomerToxicity)
}

func TestBuildRejectsBadOptions(t *testing.T) {
	_, err := Build(context.Background(), fixture(), Options{Window: "1y"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidWindow))

	_, err = Build(context.Background(), fixture(), Options{Metric: "sideways"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, escalation.ErrInvalidMetric))
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, fixture(), Options{})
	assert.Error(t, err)
}

func TestBuildEmptyDataset(t *testing.T) {
	d, err := Build(context.Background(), nil, Options{Now: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Nil(t, d.ResolvedRate[0].Value)
	assert.Empty(t, d.Ranking)
	assert.Empty(t, d.Reasons.Entries)
	assert.Equal(t, 0, d.Tips.UniqueTips)
}
