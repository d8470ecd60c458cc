package escalation

import (
	"strings"

	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
)

// ErrInvalidMetric is returned for an unknown escalation metric.
var ErrInvalidMetric = eris.New("invalid escalation metric")

// Metric selects which escalation definition drives ownership.
type Metric string

const (
	// MetricTier counts a TIER1 agent handing the ticket on to TIER2.
	MetricTier Metric = "tier"
	// MetricHandoff counts any handover between distinct agents.
	MetricHandoff Metric = "handoff"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricTier, MetricHandoff:
		return m, nil
	}
	return "", eris.Wrapf(ErrInvalidMetric, "metric %q", s)
}

// Classification is the escalation verdict for one row.
type Classification struct {
	TierHandoff bool    `json:"tier_handoff"`
	HandoffAny  bool    `json:"handoff_any"`
	Owner       *string `json:"owner"`
	Metric      Metric  `json:"metric"`
}

// Escalated reports the flag selected by the classification's metric.
func (c Classification) Escalated() bool {
	if c.Metric == MetricHandoff {
		return c.HandoffAny
	}
	return c.TierHandoff
}

// Classify evaluates both escalation definitions and picks the owner for metric.
// Tier owner: the first TIER1 agent followed later by a TIER2 agent.
// Handoff owner: the first agent followed later by a different agent.
func Classify(row types.ConversationRow, roles RoleMapping, metric Metric) Classification {
	agents := make([]string, 0, len(row.AgentList))
	for _, a := range row.AgentList {
		if a != "" && a != types.UnassignedAgent {
			agents = append(agents, a)
		}
	}

	tierOwner := tierOwner(agents, roles)
	handoffOwner := handoffOwner(agents)

	c := Classification{
		TierHandoff: tierOwner != nil,
		HandoffAny:  handoffOwner != nil,
		Metric:      metric,
	}
	if metric == MetricHandoff {
		c.Owner = handoffOwner
	} else {
		c.Owner = tierOwner
	}
	return c
}

func tierOwner(agents []string, roles RoleMapping) *string {
	tier2Seen := false
	var owner *string
	for i := len(agents) - 1; i >= 0; i-- {
		switch roles.Role(agents[i]) {
		case types.RoleTier2:
			tier2Seen = true
		case types.RoleTier1:
			if tier2Seen {
				a := agents[i]
				owner = &a
			}
		}
	}
	return owner
}

func handoffOwner(agents []string) *string {
	for i := range agents {
		for j := i + 1; j < len(agents); j++ {
			if agents[j] != agents[i] {
				a := agents[i]
				return &a
			}
		}
	}
	return nil
}
