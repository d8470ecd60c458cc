package aggregator

import (
	"testing"
	"time"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedRateSeries(t *testing.T) {
	rows := []types.ConversationRow{
		newRow("A", ago(time.Hour), resolved()),
		newRow("B", ago(2*time.Hour)),
		newRow("C", ago(3*24*time.Hour), resolved()),
		newRow("D", ago(20*24*time.Hour)),
	}

	got := ResolvedRateSeries(rows, now)
	require.Len(t, got, 3)

	assert.Equal(t, types.Window24h, got[0].Window)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 2, got[0].Total)
	assert.InDelta(t, 50, *got[0].Value, 1e-9)

	assert.Equal(t, 3, got[1].Total)
	assert.InDelta(t, 200.0/3, *got[1].Value, 1e-9)

	assert.Equal(t, 4, got[2].Total)
	assert.InDelta(t, 50, *got[2].Value, 1e-9)
}

func TestResolvedRateSeriesEmptyWindowIsNil(t *testing.T) {
	got := ResolvedRateSeries([]types.ConversationRow{newRow("old", ago(10*24*time.Hour), resolved())}, now)
	assert.Nil(t, got[0].Value)
	assert.Equal(t, 0, got[0].Total)
	assert.Nil(t, got[1].Value)
	require.NotNil(t, got[2].Value)
	assert.InDelta(t, 100, *got[2].Value, 1e-9)
}

func TestRatingSeries(t *testing.T) {
	rows := []types.ConversationRow{
		newRow("A", ago(time.Hour), score(4)),
		newRow("B", ago(time.Hour), score(2)),
		newRow("C", ago(time.Hour)),
	}
	got := RatingSeries(rows, now)
	require.NotNil(t, got[0].Value)
	assert.InDelta(t, 3, *got[0].Value, 1e-9)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 3, got[0].Total)

	assert.Nil(t, RatingSeries(nil, now)[0].Value)
}

func TestEscalationSeries(t *testing.T) {
	roles := escalation.NewRoleMapping(map[string]types.Role{
		"ann":  types.RoleTier1,
		"carl": types.RoleTier2,
	})
	rows := []types.ConversationRow{
		newRow("A", ago(time.Hour), agents("ann", "carl")),
		newRow("B", ago(time.Hour), agents("ann", "bob")),
		newRow("C", ago(time.Hour), agents("ann")),
	}
	got := EscalationSeries(rows, now, roles, escalation.MetricTier)
	assert.Equal(t, 1, got[0].TierCount)
	assert.Equal(t, 2, got[0].HandoffCount)
	assert.Equal(t, 3, got[0].Total)
	assert.InDelta(t, 100.0/3, *got[0].TierRate, 1e-9)
}

func TestResolvedTimeline(t *testing.T) {
	rows := []types.ConversationRow{
		newRow("A", ago(0), resolved()),
		newRow("B", ago(30*time.Minute)),
		newRow("C", ago(5*time.Hour), resolved()),
	}
	ts, err := ResolvedTimeline(rows, types.Window24h, now)
	require.NoError(t, err)
	require.Len(t, ts.Labels, 24)
	require.Len(t, ts.Values, 24)

	assert.Equal(t, "2025-03-10 12:00", ts.Labels[23])
	assert.Equal(t, 1, ts.Counts[23])
	assert.InDelta(t, 100, *ts.Values[23], 1e-9)
	assert.Equal(t, 1, ts.Counts[22])
	assert.InDelta(t, 0, *ts.Values[22], 1e-9)
	assert.Equal(t, 1, ts.Counts[18])
	assert.Nil(t, ts.Values[0])
}

func TestRatingTimelineSharesAxis(t *testing.T) {
	rows := []types.ConversationRow{newRow("A", ago(24*time.Hour), score(5))}
	rating, err := RatingTimeline(rows, types.Window7d, now)
	require.NoError(t, err)
	resolvedTS, err := ResolvedTimeline(rows, types.Window7d, now)
	require.NoError(t, err)

	assert.Equal(t, resolvedTS.Labels, rating.Labels)
	assert.InDelta(t, 5, *rating.Values[5], 1e-9)

	_, err = RatingTimeline(rows, types.Window("2w"), now)
	assert.Error(t, err)
}
