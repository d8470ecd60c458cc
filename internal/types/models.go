package types

import "time"

// RawRecord is one loosely-typed input row as produced by a CSV/XLSX upload or a
// backing-store query. Values are primitives (string, numbers, bool, json.Number,
// time.Time, nil) or nested []any / map[string]any decoded from JSON.
type RawRecord map[string]any

const (
	UnknownIssueKey   = "UNKNOWN"
	UnassignedAgent   = "Unassigned"
	UnknownCustomer   = "Unknown"
	UnspecifiedReason = "Unspecified"
)

// ConversationRow is the canonical, fully-typed conversation entity. It is built once
// per raw record by the normalizer and never mutated afterwards.
type ConversationRow struct {
	IssueKey     string   `json:"issue_key"`
	Agent        string   `json:"agent"`
	AgentList    []string `json:"agent_list"`
	CustomerList []string `json:"customer_list"`

	StartedAt                   *time.Time `json:"started_at"`
	EndedAt                     *time.Time `json:"ended_at"`
	ResolutionTimestamp         *time.Time `json:"resolution_timestamp"`
	DurationMinutes             *float64   `json:"duration_minutes"`
	DurationToResolutionMinutes *float64   `json:"duration_to_resolution_minutes"`
	FirstAgentResponseMinutes   *float64   `json:"first_agent_response_minutes"`
	AvgAgentResponseMinutes     *float64   `json:"avg_agent_response_minutes"`

	Resolved          bool     `json:"resolved"`
	ResolutionWhy     *string  `json:"resolution_why"`
	ResolutionExtract *string  `json:"resolution_extract"`
	ProblemExtract    *string  `json:"problem_extract"`
	StepsExtract      []string `json:"steps_extract"`

	AgentScore         *float64 `json:"agent_score"`
	CustomerScore      *float64 `json:"customer_score"`
	ConversationRating *float64 `json:"conversation_rating"`
	TotalScore         *float64 `json:"total_score"`

	ContactReason         string  `json:"contact_reason"`
	ContactReasonOriginal string  `json:"contact_reason_original"`
	ContactReasonChange   bool    `json:"contact_reason_change"`
	ReasonOverrideWhy     *string `json:"reason_override_why"`

	CustomerSentimentScores  SentimentScores `json:"customer_sentiment_scores"`
	CustomerSentimentPrimary *SentimentLabel `json:"customer_sentiment_primary"`

	CustomerAbuseCount     *int     `json:"customer_abuse_count"`
	CustomerAbuseDetected  bool     `json:"customer_abuse_detected"`
	CustomerAbusiveFlag    bool     `json:"customer_abusive_flag"`
	AgentProfanityCount    *int     `json:"agent_profanity_count"`
	AgentProfanityDetected bool     `json:"agent_profanity_detected"`
	AgentAbusiveFlag       bool     `json:"agent_abusive_flag"`
	CustomerToxicityScore  *float64 `json:"customer_toxicity_score"`
	AgentToxicityScore     *float64 `json:"agent_toxicity_score"`

	MessagesTotal    *int `json:"messages_total"`
	MessagesAgent    *int `json:"messages_agent"`
	MessagesCustomer *int `json:"messages_customer"`

	ImprovementTip *string `json:"improvement_tip"`

	// Escalated is the legacy multi-agent heuristic. Role-aware views use the
	// escalation classifier instead.
	Escalated bool `json:"escalated"`

	Raw RowRaw `json:"raw"`
}

// RowRaw carries passthrough fields for detail views; aggregators ignore it.
type RowRaw struct {
	Status     string `json:"status,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Hub        string `json:"hub,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ReferenceTime is endedAt, falling back to startedAt. Nil when neither is known.
func (r ConversationRow) ReferenceTime() *time.Time {
	if r.EndedAt != nil {
		return r.EndedAt
	}
	return r.StartedAt
}

// SentimentLabel is one of the eight canonical customer sentiment labels.
type SentimentLabel string

const (
	SentimentDelight        SentimentLabel = "Delight"
	SentimentConvenience    SentimentLabel = "Convenience"
	SentimentTrust          SentimentLabel = "Trust"
	SentimentFrustration    SentimentLabel = "Frustration"
	SentimentDisappointment SentimentLabel = "Disappointment"
	SentimentConcern        SentimentLabel = "Concern"
	SentimentHostility      SentimentLabel = "Hostility"
	SentimentNeutral        SentimentLabel = "Neutral"
)

// SentimentLabels lists the canonical labels in their fixed order. Arg-max ties
// resolve to the earliest label in this list.
var SentimentLabels = []SentimentLabel{
	SentimentDelight,
	SentimentConvenience,
	SentimentTrust,
	SentimentFrustration,
	SentimentDisappointment,
	SentimentConcern,
	SentimentHostility,
	SentimentNeutral,
}

// SentimentScores is a distribution over SentimentLabels summing to 1. A nil map
// means no usable distribution was supplied.
type SentimentScores map[SentimentLabel]float64
