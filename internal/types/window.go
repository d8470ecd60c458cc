package types

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidWindow is returned when a caller passes an unknown window identifier.
var ErrInvalidWindow = eris.New("invalid window")

// Window is one of the fixed rolling ranges used by every windowed metric.
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// Windows lists the windows in display order.
var Windows = []Window{Window24h, Window7d, Window30d}

// Granularity is the width of a timeline bucket.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Step returns the bucket width.
func (g Granularity) Step() time.Duration {
	if g == GranularityHour {
		return time.Hour
	}
	return 24 * time.Hour
}

// WindowSpec holds the fixed duration and bucket layout of a window.
type WindowSpec struct {
	Duration    time.Duration
	Granularity Granularity
	Buckets     int
}

// WindowSpecs is the single source of window durations and bucket layouts.
var WindowSpecs = map[Window]WindowSpec{
	Window24h: {Duration: 24 * time.Hour, Granularity: GranularityHour, Buckets: 24},
	Window7d:  {Duration: 7 * 24 * time.Hour, Granularity: GranularityDay, Buckets: 7},
	Window30d: {Duration: 30 * 24 * time.Hour, Granularity: GranularityDay, Buckets: 30},
}

// Spec returns the window's layout or ErrInvalidWindow.
func (w Window) Spec() (WindowSpec, error) {
	spec, ok := WindowSpecs[w]
	if !ok {
		return WindowSpec{}, eris.Wrapf(ErrInvalidWindow, "window %q", string(w))
	}
	return spec, nil
}

// ParseWindow accepts "24h", "7d", "30d" (case-insensitive, surrounding space ignored).
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if _, err := w.Spec(); err != nil {
		return "", err
	}
	return w, nil
}
