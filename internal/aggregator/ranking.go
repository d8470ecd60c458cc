package aggregator

import (
	"sort"
	"time"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"
)

const defaultRankingLimit = 5

type RankingOptions struct {
	Limit int
	// Role keeps only agents mapped to this role when set.
	Role  types.Role
	Roles escalation.RoleMapping
}

// AgentRanking ranks agents by mean blended score over the trailing 7 days. A
// multi-agent ticket counts for every agent on it. Agents without a scored
// ticket are left out.
func AgentRanking(rows []types.ConversationRow, now time.Time, opts RankingOptions) []types.AgentPerformance {
	inWindow, _ := window.Filter(rows, types.Window7d, now)
	groups, order := groupBy(inWindow, byAgent)

	out := make([]types.AgentPerformance, 0, len(order))
	for _, agent := range order {
		role := opts.Roles.Role(agent)
		if opts.Role != "" && role != opts.Role {
			continue
		}
		tickets := groups[agent]
		scores := pluck(tickets, totalScore)
		mean := meanOf(scores)
		if mean == nil {
			continue
		}
		out = append(out, types.AgentPerformance{
			Agent:         agent,
			Role:          role,
			MeanScore:     *mean,
			ScoredTickets: countNonNil(scores),
			Sparkline:     dailySparkline(tickets),
			TicketKeys:    issueKeys(tickets),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanScore != out[j].MeanScore {
			return out[i].MeanScore > out[j].MeanScore
		}
		return out[i].Agent < out[j].Agent
	})

	if limit := clampLimit(opts.Limit, defaultRankingLimit, 0); len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dailySparkline is the mean score per UTC calendar day that has a score.
func dailySparkline(rows []types.ConversationRow) []types.SparkPoint {
	byDay, days := groupBy(rows, func(r types.ConversationRow) []string {
		if r.TotalScore == nil {
			return nil
		}
		return []string{window.Label(window.Truncate(*r.ReferenceTime(), types.GranularityDay), types.GranularityDay)}
	})
	sort.Strings(days)

	points := make([]types.SparkPoint, 0, len(days))
	for _, day := range days {
		points = append(points, types.SparkPoint{Date: day, Value: *meanOf(pluck(byDay[day], totalScore))})
	}
	return points
}
