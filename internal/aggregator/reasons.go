package aggregator

import (
	"sort"
	"strings"
	"time"

	"convo-insights-go/internal/normalize"
	"convo-insights-go/internal/types"
	"convo-insights-go/internal/window"
)

const (
	defaultReasonLimit = 10
	maxReasonLimit     = 50
	recentTicketLimit  = 5
	topicSeparator     = " - "
)

// reasonKeyFn returns the grouping key and the raw label variant for a row.
type reasonKeyFn func(types.ConversationRow) (key, label string)

// ContactReasons counts tickets per normalized contact reason in the window and
// compares each against the preceding window of equal length. Every row in the
// window lands in exactly one reason.
func ContactReasons(rows []types.ConversationRow, w types.Window, now time.Time, limit int) (types.ContactReasonSummary, error) {
	cur, prev, tl, err := reasonInputs(rows, w, now)
	if err != nil {
		return types.ContactReasonSummary{}, err
	}

	entries := reasonEntries(cur, prev, tl, len(cur), rowReason)
	summary := types.ContactReasonSummary{
		Window:        w,
		Total:         len(cur),
		PreviousTotal: len(prev),
		Labels:        tl.Labels,
		ReasonCount:   len(entries),
		Entries:       entries,
	}
	if n := clampLimit(limit, defaultReasonLimit, maxReasonLimit); len(summary.Entries) > n {
		summary.Entries = summary.Entries[:n]
	}
	return summary, nil
}

// ContactReasonsV2 splits each reason into topic and sub-reason on the first
// " - " and reports both levels with deltas against the preceding window.
func ContactReasonsV2(rows []types.ConversationRow, w types.Window, now time.Time, limit int) (types.ContactReasonSummaryV2, error) {
	cur, prev, tl, err := reasonInputs(rows, w, now)
	if err != nil {
		return types.ContactReasonSummaryV2{}, err
	}

	topicEntries := reasonEntries(cur, prev, tl, len(cur), rowTopic)
	curByTopic, _ := groupBy(cur, keyOnly(rowTopic))
	prevByTopic, _ := groupBy(prev, keyOnly(rowTopic))

	topics := make([]types.ContactTopicEntry, 0, len(topicEntries))
	for _, e := range topicEntries {
		key := normalize.ReasonKey(e.Reason)
		topics = append(topics, types.ContactTopicEntry{
			ContactReasonEntry: e,
			SubReasons:         reasonEntries(curByTopic[key], prevByTopic[key], tl, e.Count, rowSubReason),
		})
	}

	summary := types.ContactReasonSummaryV2{
		Window:        w,
		Total:         len(cur),
		PreviousTotal: len(prev),
		Labels:        tl.Labels,
		TopicCount:    len(topics),
		Topics:        topics,
	}
	if n := clampLimit(limit, defaultReasonLimit, maxReasonLimit); len(summary.Topics) > n {
		summary.Topics = summary.Topics[:n]
	}
	return summary, nil
}

func reasonInputs(rows []types.ConversationRow, w types.Window, now time.Time) (cur, prev []types.ConversationRow, tl window.Timeline, err error) {
	if tl, err = window.BuildTimeline(w, now); err != nil {
		return nil, nil, tl, err
	}
	if cur, err = window.Filter(rows, w, now); err != nil {
		return nil, nil, tl, err
	}
	prev, err = window.FilterPrevious(rows, w, now)
	return cur, prev, tl, err
}

// reasonEntries builds sorted, untruncated entries. Percentages are relative
// to total.
func reasonEntries(cur, prev []types.ConversationRow, tl window.Timeline, total int, fn reasonKeyFn) []types.ContactReasonEntry {
	groups, order := groupBy(cur, keyOnly(fn))
	prevGroups, _ := groupBy(prev, keyOnly(fn))

	entries := make([]types.ContactReasonEntry, 0, len(order))
	for _, key := range order {
		tickets := groups[key]
		spark := make([]int, tl.Len())
		for _, r := range tickets {
			if i, ok := tl.Index(*r.ReferenceTime()); ok {
				spark[i]++
			}
		}
		prevCount := len(prevGroups[key])
		pct := 0.0
		if p := percent(len(tickets), total); p != nil {
			pct = *p
		}
		entries = append(entries, types.ContactReasonEntry{
			Reason:        displayLabel(tickets, fn),
			Count:         len(tickets),
			Percentage:    pct,
			Sparkline:     spark,
			RecentTickets: recentTickets(tickets, recentTicketLimit),
			PreviousCount: prevCount,
			DeltaPct:      deltaPct(len(tickets), prevCount),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Reason < entries[j].Reason
	})
	return entries
}

func keyOnly(fn reasonKeyFn) func(types.ConversationRow) []string {
	return func(r types.ConversationRow) []string {
		key, _ := fn(r)
		return []string{key}
	}
}

// displayLabel is the most frequent raw variant; ties go to the smallest string.
func displayLabel(rows []types.ConversationRow, fn reasonKeyFn) string {
	counts := map[string]int{}
	for _, r := range rows {
		_, label := fn(r)
		counts[label]++
	}
	best, bestN := "", 0
	for label, n := range counts {
		if n > bestN || (n == bestN && label < best) {
			best, bestN = label, n
		}
	}
	return best
}

// recentTickets returns up to n distinct keys, newest reference first.
func recentTickets(rows []types.ConversationRow, n int) []string {
	sorted := make([]types.ConversationRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := *sorted[i].ReferenceTime(), *sorted[j].ReferenceTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return sorted[i].IssueKey < sorted[j].IssueKey
	})
	keys := issueKeys(sorted)
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// reasonLabel prefers the corrected reason, then the original, then Unspecified.
func reasonLabel(r types.ConversationRow) string {
	if s := strings.Join(strings.Fields(r.ContactReason), " "); s != "" {
		return s
	}
	if s := strings.Join(strings.Fields(r.ContactReasonOriginal), " "); s != "" {
		return s
	}
	return types.UnspecifiedReason
}

func rowReason(r types.ConversationRow) (string, string) {
	label := reasonLabel(r)
	return normalize.ReasonKey(label), label
}

func splitReason(label string) (topic, sub string) {
	topic, sub, found := strings.Cut(label, topicSeparator)
	topic, sub = strings.TrimSpace(topic), strings.TrimSpace(sub)
	if topic == "" {
		topic = types.UnspecifiedReason
	}
	if !found || sub == "" {
		sub = types.UnspecifiedReason
	}
	return topic, sub
}

func rowTopic(r types.ConversationRow) (string, string) {
	topic, _ := splitReason(reasonLabel(r))
	return normalize.ReasonKey(topic), topic
}

func rowSubReason(r types.ConversationRow) (string, string) {
	_, sub := splitReason(reasonLabel(r))
	return normalize.ReasonKey(sub), sub
}
