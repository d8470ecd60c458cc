// internal/normalize/normalize.go
package normalize

import (
	"strings"

	"convo-insights-go/internal/types"
)

var resolvedStatuses = map[string]bool{
	"resolved":  true,
	"done":      true,
	"closed":    true,
	"completed": true,
	"fixed":     true,
}

// All normalizes every raw record in order.
func All(raws []types.RawRecord) []types.ConversationRow {
	rows := make([]types.ConversationRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, Normalize(raw))
	}
	return rows
}

// Normalize builds the canonical row for one raw record. Malformed fields
// degrade to nil/false/empty; it never fails.
func Normalize(raw types.RawRecord) types.ConversationRow {
	row := types.ConversationRow{
		IssueKey: Text(lookup(raw, fieldIssueKey)),

		StartedAt:                   Time(lookup(raw, fieldStartedAt)),
		EndedAt:                     Time(lookup(raw, fieldEndedAt)),
		DurationMinutes:             Number(lookup(raw, fieldDuration)),
		DurationToResolutionMinutes: Number(lookup(raw, fieldDurationToResolution)),
		FirstAgentResponseMinutes:   Number(lookup(raw, fieldFirstAgentResponse)),
		AvgAgentResponseMinutes:     Number(lookup(raw, fieldAvgAgentResponse)),

		ResolutionWhy:     OptText(lookup(raw, fieldResolutionWhy)),
		ResolutionExtract: OptText(lookup(raw, fieldResolutionExtract)),
		ProblemExtract:    OptText(lookup(raw, fieldProblemExtract)),
		StepsExtract:      Steps(lookup(raw, fieldSteps)),

		AgentScore:         Number(lookup(raw, fieldAgentScore)),
		CustomerScore:      Number(lookup(raw, fieldCustomerScore)),
		ConversationRating: Number(lookup(raw, fieldConversationRating)),

		ReasonOverrideWhy: OptText(lookup(raw, fieldReasonOverrideWhy)),

		CustomerAbuseCount:     Int(lookup(raw, fieldCustomerAbuseCount)),
		CustomerAbuseDetected:  Bool(lookup(raw, fieldCustomerAbuseDetected)),
		CustomerAbusiveFlag:    Bool(lookup(raw, fieldCustomerAbusive)),
		AgentProfanityCount:    Int(lookup(raw, fieldAgentProfanityCount)),
		AgentProfanityDetected: Bool(lookup(raw, fieldAgentProfanityDetected)),
		AgentAbusiveFlag:       Bool(lookup(raw, fieldAgentAbusive)),
		CustomerToxicityScore:  unitScore(lookup(raw, fieldCustomerToxicity)),
		AgentToxicityScore:     unitScore(lookup(raw, fieldAgentToxicity)),

		MessagesTotal:    Int(lookup(raw, fieldMessagesTotal)),
		MessagesAgent:    Int(lookup(raw, fieldMessagesAgent)),
		MessagesCustomer: Int(lookup(raw, fieldMessagesCustomer)),

		ImprovementTip: OptText(lookup(raw, fieldImprovementTip)),

		Raw: types.RowRaw{
			Status:     Text(lookup(raw, fieldStatus)),
			Resolution: Text(lookup(raw, fieldResolution)),
			Hub:        Text(lookup(raw, fieldHub)),
			Summary:    Text(lookup(raw, fieldSummary)),
		},
	}
	if row.IssueKey == "" {
		row.IssueKey = types.UnknownIssueKey
	}

	row.AgentList = orSentinel(List(lookup(raw, fieldAgents)), types.UnassignedAgent)
	row.CustomerList = orSentinel(List(lookup(raw, fieldCustomers)), types.UnknownCustomer)
	row.Agent = row.AgentList[0]
	row.Escalated = realAgents(row.AgentList) > 1

	row.Resolved = Bool(lookup(raw, fieldResolvedFlag)) ||
		resolvedStatuses[strings.ToLower(row.Raw.Status)] ||
		resolvedStatuses[strings.ToLower(row.Raw.Resolution)]
	if row.Resolved {
		row.ResolutionTimestamp = Time(lookup(raw, fieldResolutionTimestamp))
	}

	row.TotalScore = BlendedScore(row.AgentScore, row.CustomerScore, row.ConversationRating)

	row.ContactReason = Text(lookup(raw, fieldContactReason))
	row.ContactReasonOriginal = Text(lookup(raw, fieldContactReasonOriginal))
	row.ContactReasonChange = ReasonChanged(
		Bool(lookup(raw, fieldContactReasonChange)),
		row.ContactReasonOriginal,
		row.ContactReason,
	)

	row.CustomerSentimentScores = Sentiment(lookup(raw, fieldSentimentScores))
	row.CustomerSentimentPrimary = PrimarySentiment(lookup(raw, fieldSentimentPrimary), row.CustomerSentimentScores)

	return row
}

func orSentinel(list []string, sentinel string) []string {
	if len(list) == 0 {
		return []string{sentinel}
	}
	return list
}

func realAgents(list []string) int {
	n := 0
	for _, a := range list {
		if a != types.UnassignedAgent {
			n++
		}
	}
	return n
}

func unitScore(v any) *float64 {
	f := Number(v)
	if f == nil {
		return nil
	}
	c := clamp01(*f)
	return &c
}

// ---------------------------------------------------------
// Derived fields
// ---------------------------------------------------------

type scoreRule struct {
	when  func(agent, customer, rating *float64) bool
	value func(agent, customer, rating *float64) float64
}

var blendedScoreRules = []scoreRule{
	{
		when:  func(a, c, _ *float64) bool { return a != nil && c != nil },
		value: func(a, c, _ *float64) float64 { return (*a + *c) / 2 },
	},
	{
		when:  func(a, _, _ *float64) bool { return a != nil },
		value: func(a, _, _ *float64) float64 { return *a },
	},
	{
		when:  func(_, c, _ *float64) bool { return c != nil },
		value: func(_, c, _ *float64) float64 { return *c },
	},
	{
		when:  func(_, _, r *float64) bool { return r != nil },
		value: func(_, _, r *float64) float64 { return *r },
	},
}

// BlendedScore averages agent and customer scores when both exist, otherwise
// takes whichever exists, otherwise the conversation rating.
func BlendedScore(agent, customer, rating *float64) *float64 {
	for _, rule := range blendedScoreRules {
		if rule.when(agent, customer, rating) {
			v := rule.value(agent, customer, rating)
			return &v
		}
	}
	return nil
}

type reasonInputs struct {
	flag                bool
	original, corrected string // trimmed
	origKey, corrKey    string // case and whitespace folded
}

type reasonRule struct {
	when  func(in reasonInputs) bool
	value func(in reasonInputs) bool
}

var reasonChangeRules = []reasonRule{
	{
		when:  func(in reasonInputs) bool { return in.origKey != "" && in.corrKey != "" && in.origKey != in.corrKey },
		value: func(reasonInputs) bool { return true },
	},
	{
		when:  func(in reasonInputs) bool { return in.original != "" && in.original == in.corrected },
		value: func(reasonInputs) bool { return false },
	},
	{
		when:  func(reasonInputs) bool { return true },
		value: func(in reasonInputs) bool { return in.flag },
	},
}

// ReasonChanged is true when both reasons are present and differ after folding.
// Identical reasons clear a stale flag. Any other case (one side missing, or a
// difference in case or spacing only) defers to the upstream flag.
func ReasonChanged(flag bool, original, corrected string) bool {
	in := reasonInputs{
		flag:      flag,
		original:  strings.TrimSpace(original),
		corrected: strings.TrimSpace(corrected),
		origKey:   ReasonKey(original),
		corrKey:   ReasonKey(corrected),
	}
	for _, rule := range reasonChangeRules {
		if rule.when(in) {
			return rule.value(in)
		}
	}
	return flag
}

// ReasonKey folds case and collapses whitespace for reason comparison and grouping.
func ReasonKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
