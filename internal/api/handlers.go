package api

import (
	"net/http"
	"time"

	"convo-insights-go/internal/actionable"
	"convo-insights-go/internal/aggregator"
	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/dataset"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
)

type healthResponse struct {
	Status   string     `json:"status"`
	Rows     int        `json:"rows"`
	Latest   *time.Time `json:"latest,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	resp := healthResponse{Status: "ok", Rows: len(snap.rows)}
	if !snap.now.IsZero() {
		resp.Latest = &snap.now
	}
	if !snap.loadedAt.IsZero() {
		resp.LoadedAt = &snap.loadedAt
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, dataset.Summarize(s.current().rows))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	d, err := dashboard.Build(r.Context(), snap.rows, opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

type seriesResponse struct {
	Window           types.Window            `json:"window"`
	ResolvedRate     []types.MetricSeries    `json:"resolved_rate"`
	Rating           []types.MetricSeries    `json:"rating"`
	Escalation       []types.EscalationPoint `json:"escalation"`
	ResolvedTimeline types.TimeSeries        `json:"resolved_timeline"`
	RatingTimeline   types.TimeSeries        `json:"rating_timeline"`
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	resp := seriesResponse{
		Window:       opts.Window,
		ResolvedRate: aggregator.ResolvedRateSeries(snap.rows, opts.Now),
		Rating:       aggregator.RatingSeries(snap.rows, opts.Now),
		Escalation:   aggregator.EscalationSeries(snap.rows, opts.Now, opts.Roles, opts.Metric),
	}
	if resp.ResolvedTimeline, err = aggregator.ResolvedTimeline(snap.rows, opts.Window, opts.Now); err != nil {
		s.internalError(w, r, err)
		return
	}
	if resp.RatingTimeline, err = aggregator.RatingTimeline(snap.rows, opts.Window, opts.Now); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	n, err := limit(r, opts.AgentLimit)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	ranking := aggregator.AgentRanking(snap.rows, opts.Now, aggregator.RankingOptions{
		Limit: n,
		Role:  opts.RoleFilter,
		Roles: opts.Roles,
	})
	if ranking == nil {
		ranking = []types.AgentPerformance{}
	}
	s.writeJSON(w, r, http.StatusOK, ranking)
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	inWindow, err := window.Filter(snap.rows, opts.Window, opts.Now)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	matrix := aggregator.AgentMatrix(inWindow, opts.Roles, opts.Metric)
	if matrix == nil {
		matrix = []types.AgentMatrixRow{}
	}
	s.writeJSON(w, r, http.StatusOK, matrix)
}

func (s *Server) handleReasons(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	n, err := limit(r, opts.ReasonLimit)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	switch v := r.URL.Query().Get("version"); v {
	case "", "1":
		summary, err := aggregator.ContactReasons(snap.rows, opts.Window, opts.Now, n)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, summary)
	case "2":
		summary, err := aggregator.ContactReasonsV2(snap.rows, opts.Window, opts.Now, n)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, summary)
	default:
		s.badRequest(w, r, eris.Errorf("invalid version %q", v))
	}
}

func (s *Server) handleToxicity(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	n, err := limit(r, opts.ToxicityLimit)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	inWindow, err := window.Filter(snap.rows, opts.Window, opts.Now)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	var entries []types.ToxicityEntry
	switch side := chi.URLParam(r, "side"); side {
	case "customers":
		entries = aggregator.CustomerToxicity(inWindow, opts.Settings, n)
	case "agents":
		entries = aggregator.AgentToxicity(inWindow, opts.Settings, n)
	default:
		s.badRequest(w, r, eris.Errorf("invalid side %q, want customers or agents", side))
		return
	}
	if entries == nil {
		entries = []types.ToxicityEntry{}
	}
	s.writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	n, err := limit(r, opts.TipLimit)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, aggregator.ImprovementTips(snap.rows, opts.Now, n))
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	opts, err := s.options(r, snap)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	d, err := dashboard.Build(r.Context(), snap.rows, opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, actionable.Generate(d))
}

type reloadResponse struct {
	Rows int `json:"rows"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := s.Reload(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, reloadResponse{Rows: n})
}
