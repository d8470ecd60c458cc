package aggregator

import (
	"time"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"
)

// ResolvedRateSeries reports resolved/total per window. Value is nil for an
// empty window.
func ResolvedRateSeries(rows []types.ConversationRow, now time.Time) []types.MetricSeries {
	out := make([]types.MetricSeries, 0, len(types.Windows))
	for _, w := range types.Windows {
		inWindow, _ := window.Filter(rows, w, now)
		resolved := 0
		for _, r := range inWindow {
			if r.Resolved {
				resolved++
			}
		}
		out = append(out, types.MetricSeries{
			Window: w,
			Value:  percent(resolved, len(inWindow)),
			Count:  resolved,
			Total:  len(inWindow),
		})
	}
	return out
}

// RatingSeries reports the mean blended score per window over scored rows.
func RatingSeries(rows []types.ConversationRow, now time.Time) []types.MetricSeries {
	out := make([]types.MetricSeries, 0, len(types.Windows))
	for _, w := range types.Windows {
		inWindow, _ := window.Filter(rows, w, now)
		scores := pluck(inWindow, totalScore)
		out = append(out, types.MetricSeries{
			Window: w,
			Value:  meanOf(scores),
			Count:  countNonNil(scores),
			Total:  len(inWindow),
		})
	}
	return out
}

// EscalationSeries counts tier escalations and handoffs per window.
func EscalationSeries(rows []types.ConversationRow, now time.Time, roles escalation.RoleMapping, metric escalation.Metric) []types.EscalationPoint {
	out := make([]types.EscalationPoint, 0, len(types.Windows))
	for _, w := range types.Windows {
		inWindow, _ := window.Filter(rows, w, now)
		p := types.EscalationPoint{Window: w, Total: len(inWindow)}
		for _, r := range inWindow {
			c := escalation.Classify(r, roles, metric)
			if c.TierHandoff {
				p.TierCount++
			}
			if c.HandoffAny {
				p.HandoffCount++
			}
		}
		p.TierRate = percent(p.TierCount, p.Total)
		p.HandoffRate = percent(p.HandoffCount, p.Total)
		out = append(out, p)
	}
	return out
}

// ResolvedTimeline buckets the resolved rate over the window's timeline.
func ResolvedTimeline(rows []types.ConversationRow, w types.Window, now time.Time) (types.TimeSeries, error) {
	return bucketSeries(rows, w, now, func(bucket []types.ConversationRow) (*float64, int) {
		resolved := 0
		for _, r := range bucket {
			if r.Resolved {
				resolved++
			}
		}
		return percent(resolved, len(bucket)), len(bucket)
	})
}

// RatingTimeline buckets the mean blended score over the window's timeline.
func RatingTimeline(rows []types.ConversationRow, w types.Window, now time.Time) (types.TimeSeries, error) {
	return bucketSeries(rows, w, now, func(bucket []types.ConversationRow) (*float64, int) {
		scores := pluck(bucket, totalScore)
		return meanOf(scores), countNonNil(scores)
	})
}

func bucketSeries(
	rows []types.ConversationRow,
	w types.Window,
	now time.Time,
	reduce func([]types.ConversationRow) (*float64, int),
) (types.TimeSeries, error) {
	tl, err := window.BuildTimeline(w, now)
	if err != nil {
		return types.TimeSeries{}, err
	}
	inWindow, err := window.Filter(rows, w, now)
	if err != nil {
		return types.TimeSeries{}, err
	}

	buckets := make([][]types.ConversationRow, tl.Len())
	for _, r := range inWindow {
		if i, ok := tl.Index(*r.ReferenceTime()); ok {
			buckets[i] = append(buckets[i], r)
		}
	}

	ts := types.TimeSeries{
		Window: w,
		Labels: tl.Labels,
		Values: make([]*float64, tl.Len()),
		Counts: make([]int, tl.Len()),
	}
	for i, bucket := range buckets {
		ts.Values[i], ts.Counts[i] = reduce(bucket)
	}
	return ts, nil
}

func totalScore(r types.ConversationRow) *float64 { return r.TotalScore }
