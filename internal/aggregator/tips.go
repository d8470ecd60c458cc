package aggregator

import (
	"sort"
	"strings"
	"time"

	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"
)

const defaultTipLimit = 3

// ImprovementTips groups identical tip text from the trailing 24 hours.
func ImprovementTips(rows []types.ConversationRow, now time.Time, limit int) types.ImprovementTipSummary {
	inWindow, _ := window.Filter(rows, types.Window24h, now)

	var tipped []types.ConversationRow
	for _, r := range inWindow {
		if r.ImprovementTip != nil && strings.TrimSpace(*r.ImprovementTip) != "" {
			tipped = append(tipped, r)
		}
	}
	groups, order := groupBy(tipped, func(r types.ConversationRow) []string {
		return []string{strings.TrimSpace(*r.ImprovementTip)}
	})

	out := make([]types.ImprovementTipGroup, 0, len(order))
	for _, tip := range order {
		g := types.ImprovementTipGroup{Tip: tip}
		var agents []string
		for _, r := range groups[tip] {
			g.Count++
			agents = append(agents, byAgent(r)...)
			if ref := r.ReferenceTime(); ref.After(g.LastSeen) {
				g.LastSeen = *ref
			}
		}
		g.IssueKeys = issueKeys(groups[tip])
		g.Agents = distinct(agents)
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].Tip < out[j].Tip
	})

	top := out
	if n := clampLimit(limit, defaultTipLimit, 0); len(top) > n {
		top = top[:n]
	}
	return types.ImprovementTipSummary{
		Window:     types.Window24h,
		TotalTips:  len(tipped),
		UniqueTips: len(out),
		Groups:     out,
		Top:        top,
	}
}
