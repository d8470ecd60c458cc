package aggregator

import (
	"sort"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"
)

// AgentMatrix summarises each agent's handling metrics over rows already
// filtered to a window. Escalated and misclassified tickets are attributed to a
// single agent per ticket: the escalation owner under metric, or the primary
// agent for a misclassified ticket that did not escalate. Rows repeating an
// issue key are attributed once.
func AgentMatrix(rows []types.ConversationRow, roles escalation.RoleMapping, metric escalation.Metric) []types.AgentMatrixRow {
	groups, order := groupBy(rows, byAgent)

	escalated := map[string]int{}
	misclassified := map[string]int{}
	seen := map[string]struct{}{}
	for _, r := range rows {
		if r.IssueKey != types.UnknownIssueKey {
			if _, dup := seen[r.IssueKey]; dup {
				continue
			}
			seen[r.IssueKey] = struct{}{}
		}
		c := escalation.Classify(r, roles, metric)
		owner := ""
		if c.Escalated() && c.Owner != nil {
			owner = *c.Owner
			escalated[owner]++
		}
		if !r.ContactReasonChange {
			continue
		}
		if owner == "" {
			owner = r.Agent
		}
		if owner != types.UnassignedAgent {
			misclassified[owner]++
		}
	}

	out := make([]types.AgentMatrixRow, 0, len(order))
	for _, agent := range order {
		tickets := groups[agent]
		resolved := 0
		for _, r := range tickets {
			if r.Resolved {
				resolved++
			}
		}
		out = append(out, types.AgentMatrixRow{
			Agent:   agent,
			Role:    roles.Role(agent),
			Tickets: len(tickets),
			AvgFirstResponseMinutes: meanOf(pluck(tickets, func(r types.ConversationRow) *float64 {
				return r.FirstAgentResponseMinutes
			})),
			AvgAgentResponseMinutes: meanOf(pluck(tickets, func(r types.ConversationRow) *float64 {
				return r.AvgAgentResponseMinutes
			})),
			AvgResolutionMinutes: meanOf(pluck(tickets, func(r types.ConversationRow) *float64 {
				return r.DurationToResolutionMinutes
			})),
			ResolvedRate: percent(resolved, len(tickets)),
			AvgAgentScore: meanOf(pluck(tickets, func(r types.ConversationRow) *float64 {
				return r.AgentScore
			})),
			EscalatedCount:     escalated[agent],
			MisclassifiedCount: misclassified[agent],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Agent < out[j].Agent })
	return out
}
