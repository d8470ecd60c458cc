package actionable

import (
	"fmt"
	"strings"

	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/types"
)

const (
	risingDeltaPct    = 50.0
	risingMinTickets  = 3
	lowResolvedRate   = 60.0
	maxNamesInInsight = 3
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

func Generate(d *dashboard.Dashboard) []ActionCard {
	var cards []ActionCard

	for _, e := range d.Reasons.Entries {
		if e.DeltaPct == nil || *e.DeltaPct < risingDeltaPct || e.Count < risingMinTickets {
			continue
		}
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Contact reason %q up %.0f%% vs previous %s (%d tickets)", e.Reason, *e.DeltaPct, d.Window, e.Count),
			Action:  "Review recent tickets " + strings.Join(e.RecentTickets, ", ") + " and brief the queue owner",
			Impact:  "Catch emerging product or process issues early",
		})
	}

	if len(d.CustomerToxicity) > 0 {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Abusive customers this %s: %s", d.Window, names(d.CustomerToxicity)),
			Action:  "Flag accounts for supervisor follow-up and apply the abuse policy",
			Impact:  "Protect agents and reduce escalations",
		})
	}

	if len(d.AgentToxicity) > 0 {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Agents above toxicity threshold: %s", names(d.AgentToxicity)),
			Action:  "Schedule coaching and review flagged conversations",
			Impact:  "Restore tone standards and customer trust",
		})
	}

	for _, s := range d.ResolvedRate {
		if s.Window != d.Window || s.Value == nil || *s.Value >= lowResolvedRate {
			continue
		}
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Resolved rate %.0f%% over %s (%d of %d)", *s.Value, s.Window, s.Count, s.Total),
			Action:  "Audit unresolved tickets for missing follow-ups",
			Impact:  "Reduce repeat contacts",
		})
	}

	if len(cards) == 0 {
		cards = append(cards, ActionCard{
			Insight: "No strong pattern detected",
			Action:  "Monitor and collect more data",
			Impact:  "Low immediate intervention",
		})
	}
	return cards
}

func names(entries []types.ToxicityEntry) string {
	var out []string
	for i, e := range entries {
		if i == maxNamesInInsight {
			out = append(out, fmt.Sprintf("+%d more", len(entries)-i))
			break
		}
		out = append(out, e.Name)
	}
	return strings.Join(out, ", ")
}
