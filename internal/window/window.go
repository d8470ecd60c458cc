package window

import (
	"time"

	"convo-insights-go/internal/types"
)

// Reference is the row's reference instant: endedAt, falling back to startedAt.
func Reference(row types.ConversationRow) *time.Time {
	return row.ReferenceTime()
}

// Filter keeps rows whose reference instant is at or after now-duration. There
// is no upper bound, so rows dated after now are kept.
func Filter(rows []types.ConversationRow, w types.Window, now time.Time) ([]types.ConversationRow, error) {
	spec, err := w.Spec()
	if err != nil {
		return nil, err
	}
	return between(rows, now.Add(-spec.Duration), time.Time{}), nil
}

// FilterPrevious keeps rows in the window of equal length immediately before
// the current one: [now-2d, now-d).
func FilterPrevious(rows []types.ConversationRow, w types.Window, now time.Time) ([]types.ConversationRow, error) {
	spec, err := w.Spec()
	if err != nil {
		return nil, err
	}
	return between(rows, now.Add(-2*spec.Duration), now.Add(-spec.Duration)), nil
}

// between keeps rows with from <= ref, and ref < until when until is set.
func between(rows []types.ConversationRow, from, until time.Time) []types.ConversationRow {
	out := make([]types.ConversationRow, 0, len(rows))
	for _, row := range rows {
		ref := row.ReferenceTime()
		if ref == nil || ref.Before(from) {
			continue
		}
		if !until.IsZero() && !ref.Before(until) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// LatestObserved returns the greatest reference instant across rows, or the
// zero time when no row has one.
func LatestObserved(rows []types.ConversationRow) time.Time {
	var latest time.Time
	for _, row := range rows {
		if ref := row.ReferenceTime(); ref != nil && ref.After(latest) {
			latest = *ref
		}
	}
	return latest
}
