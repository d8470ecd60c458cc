// internal/dashboard/dashboard.go
package dashboard

import (
	"context"
	"time"

	"convo-insights-go/internal/aggregator"
	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Options select the window, escalation metric and limits for one build.
type Options struct {
	Window types.Window
	// Now anchors every window. Zero means the latest observed row.
	Now      time.Time
	Metric   escalation.Metric
	Roles    escalation.RoleMapping
	Settings types.Settings

	// RoleFilter restricts the agent ranking to one role.
	RoleFilter types.Role

	AgentLimit    int
	ReasonLimit   int
	ToxicityLimit int
	TipLimit      int
}

// Dashboard is the full set of summaries for one window. Plain data only.
type Dashboard struct {
	Window      types.Window      `json:"window"`
	Now         time.Time         `json:"now"`
	Metric      escalation.Metric `json:"metric"`
	TotalRows   int               `json:"total_rows"`
	WindowTotal int               `json:"window_total"`

	ResolvedRate     []types.MetricSeries    `json:"resolved_rate"`
	Rating           []types.MetricSeries    `json:"rating"`
	Escalation       []types.EscalationPoint `json:"escalation"`
	ResolvedTimeline types.TimeSeries        `json:"resolved_timeline"`
	RatingTimeline   types.TimeSeries        `json:"rating_timeline"`

	Ranking []types.AgentPerformance `json:"ranking"`
	Matrix  []types.AgentMatrixRow   `json:"matrix"`

	Reasons   types.ContactReasonSummary   `json:"reasons"`
	ReasonsV2 types.ContactReasonSummaryV2 `json:"reasons_v2"`

	CustomerToxicity []types.ToxicityEntry       `json:"customer_toxicity"`
	AgentToxicity    []types.ToxicityEntry       `json:"agent_toxicity"`
	Tips             types.ImprovementTipSummary `json:"tips"`
}

// Build validates opts, filters once and runs the aggregators concurrently.
// Each aggregator writes only its own field.
func Build(ctx context.Context, rows []types.ConversationRow, opts Options) (*Dashboard, error) {
	if opts.Window == "" {
		opts.Window = types.Window7d
	}
	if _, err := opts.Window.Spec(); err != nil {
		return nil, err
	}
	if opts.Metric == "" {
		opts.Metric = escalation.MetricTier
	}
	if _, err := escalation.ParseMetric(string(opts.Metric)); err != nil {
		return nil, err
	}
	if opts.Settings == (types.Settings{}) {
		opts.Settings = types.DefaultSettings()
	}
	if opts.Now.IsZero() {
		opts.Now = window.LatestObserved(rows)
	}

	inWindow, err := window.Filter(rows, opts.Window, opts.Now)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Window:      opts.Window,
		Now:         opts.Now,
		Metric:      opts.Metric,
		TotalRows:   len(rows),
		WindowTotal: len(inWindow),
	}

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrapf(err, "%s cancelled", name)
			}
			return fn()
		})
	}

	run("resolved rate", func() error {
		d.ResolvedRate = aggregator.ResolvedRateSeries(rows, opts.Now)
		return nil
	})
	run("rating", func() error {
		d.Rating = aggregator.RatingSeries(rows, opts.Now)
		return nil
	})
	run("escalation", func() error {
		d.Escalation = aggregator.EscalationSeries(rows, opts.Now, opts.Roles, opts.Metric)
		return nil
	})
	run("resolved timeline", func() (err error) {
		d.ResolvedTimeline, err = aggregator.ResolvedTimeline(rows, opts.Window, opts.Now)
		return err
	})
	run("rating timeline", func() (err error) {
		d.RatingTimeline, err = aggregator.RatingTimeline(rows, opts.Window, opts.Now)
		return err
	})
	run("ranking", func() error {
		d.Ranking = aggregator.AgentRanking(rows, opts.Now, aggregator.RankingOptions{
			Limit: opts.AgentLimit,
			Role:  opts.RoleFilter,
			Roles: opts.Roles,
		})
		return nil
	})
	run("matrix", func() error {
		d.Matrix = aggregator.AgentMatrix(inWindow, opts.Roles, opts.Metric)
		return nil
	})
	run("reasons", func() (err error) {
		d.Reasons, err = aggregator.ContactReasons(rows, opts.Window, opts.Now, opts.ReasonLimit)
		return err
	})
	run("reasons v2", func() (err error) {
		d.ReasonsV2, err = aggregator.ContactReasonsV2(rows, opts.Window, opts.Now, opts.ReasonLimit)
		return err
	})
	run("customer toxicity", func() error {
		d.CustomerToxicity = aggregator.CustomerToxicity(inWindow, opts.Settings, opts.ToxicityLimit)
		return nil
	})
	run("agent toxicity", func() error {
		d.AgentToxicity = aggregator.AgentToxicity(inWindow, opts.Settings, opts.ToxicityLimit)
		return nil
	})
	run("tips", func() error {
		d.Tips = aggregator.ImprovementTips(rows, opts.Now, opts.TipLimit)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "build dashboard")
	}
	return d, nil
}
