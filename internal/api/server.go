package api

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/logger"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
)

// LoadFunc returns the full normalized dataset.
type LoadFunc func(ctx context.Context) ([]types.ConversationRow, error)

// Options configure a Server. Defaults seeds every dashboard request before
// query parameters are applied.
type Options struct {
	Roles          escalation.RoleMapping
	Defaults       dashboard.Options
	AllowedOrigins []string
}

type snapshot struct {
	rows     []types.ConversationRow
	now      time.Time
	loadedAt time.Time
}

// Server serves read-only aggregates over an in-memory snapshot. Reload swaps
// the snapshot without blocking readers.
type Server struct {
	log  *logger.Logger
	load LoadFunc
	opts Options

	snap     atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

func New(log *logger.Logger, load LoadFunc, opts Options) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		log:  log.WithComponent("api"),
		load: load,
		opts: opts,
	}
	s.snap.Store(&snapshot{})
	return s
}

// Reload fetches a fresh dataset and publishes it. The previous snapshot stays
// live when loading fails.
func (s *Server) Reload(ctx context.Context) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	rows, err := s.load(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "reload dataset")
	}
	s.snap.Store(&snapshot{
		rows:     rows,
		now:      window.LatestObserved(rows),
		loadedAt: time.Now().UTC(),
	})
	s.log.WithField("rows", len(rows)).Info("dataset loaded")
	return len(rows), nil
}

func (s *Server) current() *snapshot {
	return s.snap.Load()
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/series", s.handleSeries)
		r.Get("/agents/ranking", s.handleRanking)
		r.Get("/agents/matrix", s.handleMatrix)
		r.Get("/reasons", s.handleReasons)
		r.Get("/toxicity/{side}", s.handleToxicity)
		r.Get("/tips", s.handleTips)
		r.Get("/actions", s.handleActions)
		r.Post("/reload", s.handleReload)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimiddleware.GetReqID(r.Context()); id != "" && r.Header.Get("X-Request-ID") == "" {
			r.Header.Set("X-Request-ID", id)
		}
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.WithRequest(r).
			WithField("status", ww.Status()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request")
	})
}
