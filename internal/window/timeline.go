package window

import (
	"time"

	"convo-insights-go/internal/types"
)

const (
	hourLabel = "2006-01-02 15:00"
	dayLabel  = "2006-01-02"
)

// Timeline is the shared x-axis for every series of one window.
type Timeline struct {
	Window       types.Window
	Granularity  types.Granularity
	Labels       []string
	BucketStarts []time.Time

	index map[string]int
}

// Truncate aligns t to the start of its bucket in UTC.
func Truncate(t time.Time, g types.Granularity) time.Time {
	u := t.UTC()
	if g == types.GranularityHour {
		return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
	}
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Label formats a bucket start for display.
func Label(t time.Time, g types.Granularity) string {
	if g == types.GranularityHour {
		return t.Format(hourLabel)
	}
	return t.Format(dayLabel)
}

// BuildTimeline lays buckets out backward from the bucket containing now.
func BuildTimeline(w types.Window, now time.Time) (Timeline, error) {
	spec, err := w.Spec()
	if err != nil {
		return Timeline{}, err
	}

	aligned := Truncate(now, spec.Granularity)
	tl := Timeline{
		Window:       w,
		Granularity:  spec.Granularity,
		Labels:       make([]string, spec.Buckets),
		BucketStarts: make([]time.Time, spec.Buckets),
		index:        make(map[string]int, spec.Buckets),
	}
	for i := 0; i < spec.Buckets; i++ {
		start := stepBack(aligned, spec.Granularity, spec.Buckets-1-i)
		label := Label(start, spec.Granularity)
		tl.BucketStarts[i] = start
		tl.Labels[i] = label
		tl.index[label] = i
	}
	return tl, nil
}

func stepBack(t time.Time, g types.Granularity, n int) time.Time {
	if g == types.GranularityHour {
		return t.Add(-time.Duration(n) * time.Hour)
	}
	return t.AddDate(0, 0, -n)
}

// Index returns the bucket holding t, or false when t falls outside the timeline.
func (tl Timeline) Index(t time.Time) (int, bool) {
	i, ok := tl.index[Label(Truncate(t, tl.Granularity), tl.Granularity)]
	return i, ok
}

// Len is the bucket count.
func (tl Timeline) Len() int {
	return len(tl.Labels)
}
