package main

import (
	"context"
	"time"

	"convo-insights-go/internal/actionable"
	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/store"
	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var dashboardFlags struct {
	input   string
	window  string
	metric  string
	roles   string
	role    string
	now     string
	actions bool
}

type dashboardOutput struct {
	*dashboard.Dashboard
	Actions []actionable.ActionCard `json:"actions,omitempty"`
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print every dashboard aggregate for one window as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		f := dashboardFlags

		opts := dashboard.Options{
			Settings:      cfg.Settings(),
			AgentLimit:    cfg.Dashboard.AgentLimit,
			ReasonLimit:   cfg.Dashboard.ReasonLimit,
			ToxicityLimit: cfg.Dashboard.ToxicityLimit,
			TipLimit:      cfg.Dashboard.TipLimit,
		}

		var err error
		if opts.Window, err = types.ParseWindow(firstNonEmpty(f.window, cfg.Dashboard.Window)); err != nil {
			return err
		}
		if opts.Metric, err = escalation.ParseMetric(firstNonEmpty(f.metric, cfg.Dashboard.Metric)); err != nil {
			return err
		}
		if f.role != "" {
			role, ok := types.ParseRole(f.role)
			if !ok {
				return eris.Errorf("invalid role %q", f.role)
			}
			opts.RoleFilter = role
		}
		if f.now != "" {
			t, err := time.Parse(time.RFC3339, f.now)
			if err != nil {
				return eris.Wrap(err, "parse --now")
			}
			opts.Now = t.UTC()
		}

		if opts.Roles, err = escalation.LoadRoles(firstNonEmpty(f.roles, cfg.Roles.Path)); err != nil {
			return err
		}

		rows, err := loadRows(ctx, f.input)
		if err != nil {
			return err
		}
		log.WithField("rows", len(rows)).WithField("window", opts.Window).Info("building dashboard")

		d, err := dashboard.Build(ctx, rows, opts)
		if err != nil {
			return err
		}
		out := dashboardOutput{Dashboard: d}
		if f.actions {
			out.Actions = actionable.Generate(d)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

// loadRows reads input when given, else the configured source.
func loadRows(ctx context.Context, input string) ([]types.ConversationRow, error) {
	if input != "" {
		return store.LoadRows(ctx, store.FileSource{Path: input}, time.Time{})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, closeSrc, err := store.Open(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	defer closeSrc() //nolint:errcheck
	return store.LoadRows(ctx, src, cfg.Since(time.Now().UTC()))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	fl := dashboardCmd.Flags()
	fl.StringVar(&dashboardFlags.input, "input", "", "export file (.csv, .json, .xlsx); defaults to the configured source")
	fl.StringVar(&dashboardFlags.window, "window", "", "window: 24h, 7d or 30d")
	fl.StringVar(&dashboardFlags.metric, "metric", "", "escalation metric: tier or handoff")
	fl.StringVar(&dashboardFlags.roles, "roles", "", "agent role CSV")
	fl.StringVar(&dashboardFlags.role, "role", "", "restrict the ranking to TIER1, TIER2 or NON_AGENT")
	fl.StringVar(&dashboardFlags.now, "now", "", "anchor instant (RFC3339); defaults to the latest row")
	fl.BoolVar(&dashboardFlags.actions, "actions", false, "include action cards")
	rootCmd.AddCommand(dashboardCmd)
}
