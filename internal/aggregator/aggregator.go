package aggregator

import (
	"convo-insights-go/internal/types"
)

// Shared reducers. Every aggregator filters nulls the same way through these.

// meanOf averages the non-nil values. Nil when none contribute.
func meanOf(values []*float64) *float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// countNonNil is the divisor meanOf used.
func countNonNil(values []*float64) int {
	n := 0
	for _, v := range values {
		if v != nil {
			n++
		}
	}
	return n
}

// percent is part/total*100, nil for an empty total.
func percent(part, total int) *float64 {
	if total == 0 {
		return nil
	}
	p := float64(part) / float64(total) * 100
	return &p
}

// deltaPct is the relative change from previous to current, nil when previous is zero.
func deltaPct(current, previous int) *float64 {
	if previous == 0 {
		return nil
	}
	d := float64(current-previous) / float64(previous) * 100
	return &d
}

// groupBy buckets items under every key keyFn returns. Keys come back in
// first-seen order; a key repeated by one item counts that item once.
func groupBy[T any](items []T, keyFn func(T) []string) (map[string][]T, []string) {
	groups := map[string][]T{}
	var order []string
	for _, item := range items {
		seen := map[string]struct{}{}
		for _, k := range keyFn(item) {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], item)
		}
	}
	return groups, order
}

// distinct keeps first occurrences.
func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// byAgent keys a row under every real agent on it.
func byAgent(row types.ConversationRow) []string {
	out := make([]string, 0, len(row.AgentList))
	for _, a := range row.AgentList {
		if a != types.UnassignedAgent {
			out = append(out, a)
		}
	}
	return out
}

// byCustomer keys a row under every known customer on it.
func byCustomer(row types.ConversationRow) []string {
	out := make([]string, 0, len(row.CustomerList))
	for _, c := range row.CustomerList {
		if c != types.UnknownCustomer {
			out = append(out, c)
		}
	}
	return out
}

func pluck(rows []types.ConversationRow, fn func(types.ConversationRow) *float64) []*float64 {
	out := make([]*float64, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out
}

func issueKeys(rows []types.ConversationRow) []string {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.IssueKey)
	}
	return distinct(keys)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}
