package aggregator

import (
	"math"
	"sort"

	"convo-insights-go/internal/types"
)

const defaultToxicityLimit = 5

// Side selects which participant's abuse signals are read.
type Side string

const (
	SideCustomer Side = "customer"
	SideAgent    Side = "agent"
)

// Mode is how toxicity is derived across a cohort.
type Mode string

const (
	// ModeExplicit uses the provided toxicity score for every row; rows without
	// one count as zero.
	ModeExplicit Mode = "explicit"
	// ModeDerived walks the flag, count and soft-flag fallbacks.
	ModeDerived Mode = "derived"
)

type signals struct {
	explicit *float64
	abusive  bool
	count    *int
	soft     bool
	softHit  float64
}

func sideSignals(r types.ConversationRow, side Side) signals {
	if side == SideAgent {
		return signals{
			explicit: r.AgentToxicityScore,
			abusive:  r.AgentAbusiveFlag,
			count:    r.AgentProfanityCount,
			soft:     r.AgentProfanityDetected,
			softHit:  0.5,
		}
	}
	return signals{
		explicit: r.CustomerToxicityScore,
		abusive:  r.CustomerAbusiveFlag,
		count:    r.CustomerAbuseCount,
		soft:     r.CustomerAbuseDetected,
		softHit:  0.6,
	}
}

type toxicityRule struct {
	when  func(s signals, mode Mode) bool
	value func(s signals, settings types.Settings) float64
}

var toxicityRules = []toxicityRule{
	{
		when: func(_ signals, mode Mode) bool { return mode == ModeExplicit },
		value: func(s signals, _ types.Settings) float64 {
			if s.explicit == nil {
				return 0
			}
			return clamp01(*s.explicit)
		},
	},
	{
		when:  func(s signals, _ Mode) bool { return s.abusive },
		value: func(signals, types.Settings) float64 { return 1 },
	},
	{
		when: func(s signals, _ Mode) bool { return s.count != nil && *s.count > 0 },
		value: func(s signals, settings types.Settings) float64 {
			return clamp01(float64(*s.count) / math.Max(1, settings.AbusiveCapsTrigger))
		},
	},
	{
		when:  func(s signals, _ Mode) bool { return s.soft },
		value: func(s signals, _ types.Settings) float64 { return s.softHit },
	},
}

// CohortMode is explicit when any row in the cohort carries an explicit score
// for side.
func CohortMode(rows []types.ConversationRow, side Side) Mode {
	for _, r := range rows {
		if sideSignals(r, side).explicit != nil {
			return ModeExplicit
		}
	}
	return ModeDerived
}

// ToxicityValue derives a row's toxicity in [0,1] for side.
func ToxicityValue(r types.ConversationRow, side Side, mode Mode, settings types.Settings) float64 {
	s := sideSignals(r, side)
	for _, rule := range toxicityRules {
		if rule.when(s, mode) {
			return rule.value(s, settings)
		}
	}
	return 0
}

// eligible drops rows whose known message count is under the minimum.
func eligible(rows []types.ConversationRow, settings types.Settings) []types.ConversationRow {
	out := make([]types.ConversationRow, 0, len(rows))
	for _, r := range rows {
		if r.MessagesTotal != nil && *r.MessagesTotal < settings.MinMessagesForToxicity {
			continue
		}
		out = append(out, r)
	}
	return out
}

type scoredRow struct {
	row      types.ConversationRow
	toxicity float64
}

func scoreRows(rows []types.ConversationRow, side Side, settings types.Settings) []scoredRow {
	rows = eligible(rows, settings)
	mode := CohortMode(rows, side)
	out := make([]scoredRow, len(rows))
	for i, r := range rows {
		out[i] = scoredRow{row: r, toxicity: ToxicityValue(r, side, mode, settings)}
	}
	return out
}

// CustomerToxicity ranks customers with at least one abusive ticket by
// hits × abusive tickets. Hits count only on abusive tickets.
func CustomerToxicity(rows []types.ConversationRow, settings types.Settings, limit int) []types.ToxicityEntry {
	scored := scoreRows(rows, SideCustomer, settings)
	groups, order := groupBy(scored, func(s scoredRow) []string { return byCustomer(s.row) })

	out := make([]types.ToxicityEntry, 0)
	for _, name := range order {
		entry := types.ToxicityEntry{Name: name}
		var abusiveKeys []string
		var scores []*float64
		for _, s := range groups[name] {
			entry.TotalTickets++
			scores = append(scores, s.row.CustomerScore)
			if s.toxicity > 0 {
				entry.AbusiveTickets++
				if s.row.CustomerAbuseCount != nil && *s.row.CustomerAbuseCount > 0 {
					entry.HitCount += *s.row.CustomerAbuseCount
				}
				abusiveKeys = append(abusiveKeys, s.row.IssueKey)
			}
		}
		if entry.AbusiveTickets == 0 {
			continue
		}
		entry.MeanScore = meanOf(scores)
		entry.MeanToxicity = float64(entry.HitCount * entry.AbusiveTickets)
		entry.IssueKeys = distinct(abusiveKeys)
		out = append(out, entry)
	}

	sortToxicity(out)
	return truncateToxicity(out, limit)
}

// AgentToxicity ranks agents with tickets strictly above the threshold by their
// mean toxicity over those tickets.
func AgentToxicity(rows []types.ConversationRow, settings types.Settings, limit int) []types.ToxicityEntry {
	scored := scoreRows(rows, SideAgent, settings)
	groups, order := groupBy(scored, func(s scoredRow) []string { return byAgent(s.row) })

	out := make([]types.ToxicityEntry, 0)
	for _, name := range order {
		entry := types.ToxicityEntry{Name: name}
		var flaggedKeys []string
		var scores []*float64
		var toxSum float64
		for _, s := range groups[name] {
			entry.TotalTickets++
			scores = append(scores, s.row.AgentScore)
			if s.row.AgentProfanityCount != nil && *s.row.AgentProfanityCount > 0 {
				entry.HitCount += *s.row.AgentProfanityCount
			}
			if s.toxicity > settings.ToxicityThreshold {
				entry.AbusiveTickets++
				toxSum += s.toxicity
				flaggedKeys = append(flaggedKeys, s.row.IssueKey)
			}
		}
		if entry.AbusiveTickets == 0 {
			continue
		}
		entry.MeanScore = meanOf(scores)
		entry.MeanToxicity = toxSum / float64(entry.AbusiveTickets)
		entry.IssueKeys = distinct(flaggedKeys)
		out = append(out, entry)
	}

	sortToxicity(out)
	return truncateToxicity(out, limit)
}

func sortToxicity(entries []types.ToxicityEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.MeanToxicity != b.MeanToxicity {
			return a.MeanToxicity > b.MeanToxicity
		}
		if a.AbusiveTickets != b.AbusiveTickets {
			return a.AbusiveTickets > b.AbusiveTickets
		}
		return a.Name < b.Name
	})
}

func truncateToxicity(entries []types.ToxicityEntry, limit int) []types.ToxicityEntry {
	if n := clampLimit(limit, defaultToxicityLimit, 0); len(entries) > n {
		return entries[:n]
	}
	return entries
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
