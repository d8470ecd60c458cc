package aggregator

import (
	"time"

	"convo-insights-go/internal/types"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

type rowOpt func(*types.ConversationRow)

func newRow(key string, ended *time.Time, opts ...rowOpt) types.ConversationRow {
	r := types.ConversationRow{
		IssueKey:     key,
		Agent:        types.UnassignedAgent,
		AgentList:    []string{types.UnassignedAgent},
		CustomerList: []string{types.UnknownCustomer},
		EndedAt:      ended,
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func agents(names ...string) rowOpt {
	return func(r *types.ConversationRow) {
		r.AgentList = names
		r.Agent = names[0]
	}
}

func customers(names ...string) rowOpt {
	return func(r *types.ConversationRow) { r.CustomerList = names }
}

func score(v float64) rowOpt {
	return func(r *types.ConversationRow) { r.TotalScore = fp(v) }
}

func resolved() rowOpt {
	return func(r *types.ConversationRow) { r.Resolved = true }
}

func reason(corrected, original string) rowOpt {
	return func(r *types.ConversationRow) {
		r.ContactReason = corrected
		r.ContactReasonOriginal = original
	}
}

func with(fn func(*types.ConversationRow)) rowOpt { return fn }
