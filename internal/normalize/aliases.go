package normalize

import (
	"strings"

	"convo-insights-go/internal/types"
)

// field names a canonical input slot. Each slot resolves through an ordered
// alias list; the first key holding a non-blank value wins.
type field int

const (
	fieldIssueKey field = iota
	fieldAgents
	fieldCustomers
	fieldStartedAt
	fieldEndedAt
	fieldResolutionTimestamp
	fieldDuration
	fieldDurationToResolution
	fieldFirstAgentResponse
	fieldAvgAgentResponse
	fieldResolvedFlag
	fieldStatus
	fieldResolution
	fieldResolutionWhy
	fieldResolutionExtract
	fieldProblemExtract
	fieldSteps
	fieldAgentScore
	fieldCustomerScore
	fieldConversationRating
	fieldContactReason
	fieldContactReasonOriginal
	fieldContactReasonChange
	fieldReasonOverrideWhy
	fieldSentimentScores
	fieldSentimentPrimary
	fieldCustomerAbuseCount
	fieldCustomerAbuseDetected
	fieldCustomerAbusive
	fieldAgentProfanityCount
	fieldAgentProfanityDetected
	fieldAgentAbusive
	fieldCustomerToxicity
	fieldAgentToxicity
	fieldMessagesTotal
	fieldMessagesAgent
	fieldMessagesCustomer
	fieldImprovementTip
	fieldHub
	fieldSummary
)

var aliases = map[field][]string{
	fieldIssueKey:  {"issue_key", "issueKey", "key", "ticket_key"},
	fieldAgents:    {"agent_authors", "agent_list", "agentList", "agents", "agent"},
	fieldCustomers: {"customer_authors", "customer_list", "customerList", "customers", "customer"},

	fieldStartedAt:            {"conversation_start", "started_at", "startedAt", "start_time", "created"},
	fieldEndedAt:              {"conversation_end", "ended_at", "endedAt", "end_time"},
	fieldResolutionTimestamp:  {"resolution_timestamp_iso", "resolution_timestamp", "resolutionTimestamp", "resolved_at"},
	fieldDuration:             {"duration_minutes", "durationMinutes"},
	fieldDurationToResolution: {"duration_to_resolution", "duration_to_resolution_minutes", "durationToResolutionMinutes"},
	fieldFirstAgentResponse:   {"first_agent_response_minutes", "firstAgentResponseMinutes"},
	fieldAvgAgentResponse:     {"avg_agent_response_minutes", "avgAgentResponseMinutes"},

	fieldResolvedFlag:      {"is_resolved", "resolved", "isResolved"},
	fieldStatus:            {"status", "issue_status"},
	fieldResolution:        {"resolution"},
	fieldResolutionWhy:     {"resolution_why", "resolutionWhy"},
	fieldResolutionExtract: {"resolution_extract", "resolutionExtract"},
	fieldProblemExtract:    {"problem_extract", "extract_customer_problem", "extract_customer_probelm", "problemExtract"},
	fieldSteps:             {"steps_extract", "stepsExtract", "steps"},

	fieldAgentScore:         {"agent_score", "agentScore"},
	fieldCustomerScore:      {"customer_score", "customerScore"},
	fieldConversationRating: {"conversation_rating", "conversationRating", "rating"},

	fieldContactReason:         {"contact_reason", "contactReason", "corrected_contact_reason"},
	fieldContactReasonOriginal: {"contact_reason_original", "custom_field_contact_reason", "original_contact_reason", "contactReasonOriginal"},
	fieldContactReasonChange:   {"contact_reason_change", "contactReasonChange"},
	fieldReasonOverrideWhy:     {"reason_override_why", "contact_reason_change_justification", "reasonOverrideWhy"},

	fieldSentimentScores:  {"customer_sentiment_scores", "sentiment_scores", "customerSentimentScores"},
	fieldSentimentPrimary: {"customer_sentiment_primary", "sentiment_primary", "customerSentimentPrimary"},

	fieldCustomerAbuseCount:     {"customer_abuse_count", "customerAbuseCount"},
	fieldCustomerAbuseDetected:  {"customer_abuse_detected", "customerAbuseDetected"},
	fieldCustomerAbusive:        {"customer_abusive_flag", "customer_abusive", "abusive_language", "customerAbusiveFlag"},
	fieldAgentProfanityCount:    {"agent_profanity_count", "agentProfanityCount"},
	fieldAgentProfanityDetected: {"agent_profanity_detected", "agentProfanityDetected"},
	fieldAgentAbusive:           {"agent_abusive_flag", "agent_abusive", "agentAbusiveFlag"},
	fieldCustomerToxicity:       {"customer_toxicity_score", "customer_toxicity", "customerToxicityScore"},
	fieldAgentToxicity:          {"agent_toxicity_score", "agent_toxicity", "agentToxicityScore"},

	fieldMessagesTotal:    {"messages_total", "messagesTotal"},
	fieldMessagesAgent:    {"messages_agent", "messagesAgent"},
	fieldMessagesCustomer: {"messages_customer", "messagesCustomer"},

	fieldImprovementTip: {"improvement_tip", "improvementTip"},
	fieldHub:            {"custom_field_hub", "hub"},
	fieldSummary:        {"llm_summary_250", "summary"},
}

// lookup returns the first non-blank value for f.
func lookup(raw types.RawRecord, f field) any {
	for _, key := range aliases[f] {
		v, ok := raw[key]
		if !ok || blank(v) {
			continue
		}
		return v
	}
	return nil
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}
