package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
)

const maxLimit = 50

// options merges query parameters over the server defaults. now defaults to the
// snapshot's latest observed instant.
func (s *Server) options(r *http.Request, snap *snapshot) (dashboard.Options, error) {
	opts := s.opts.Defaults
	opts.Roles = s.opts.Roles
	opts.Now = snap.now

	q := r.URL.Query()

	if v := q.Get("window"); v != "" {
		w, err := types.ParseWindow(v)
		if err != nil {
			return opts, err
		}
		opts.Window = w
	}
	if opts.Window == "" {
		opts.Window = types.Window7d
	}

	if v := q.Get("metric"); v != "" {
		m, err := escalation.ParseMetric(v)
		if err != nil {
			return opts, err
		}
		opts.Metric = m
	}
	if opts.Metric == "" {
		opts.Metric = escalation.MetricTier
	}

	if v := q.Get("role"); v != "" {
		role, ok := types.ParseRole(v)
		if !ok {
			return opts, eris.Errorf("invalid role %q", v)
		}
		opts.RoleFilter = role
	}

	if v := q.Get("now"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, eris.Errorf("invalid now %q, want RFC3339", v)
		}
		opts.Now = t.UTC()
	}

	if opts.Settings == (types.Settings{}) {
		opts.Settings = types.DefaultSettings()
	}
	return opts, nil
}

// limit reads ?limit, falling back to def. Values above maxLimit are clamped.
func limit(r *http.Request, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, eris.Errorf("invalid limit %q", v)
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}
