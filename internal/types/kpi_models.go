// internal/types/kpi_models.go
package types

import "time"

// --------------------------------------------
// Windowed headline series (one entry per window)
// --------------------------------------------
type MetricSeries struct {
	Window Window   `json:"window"`
	Value  *float64 `json:"value"`
	Count  int      `json:"count"`
	Total  int      `json:"total"`
}

type EscalationPoint struct {
	Window       Window   `json:"window"`
	TierCount    int      `json:"tier_count"`
	HandoffCount int      `json:"handoff_count"`
	Total        int      `json:"total"`
	TierRate     *float64 `json:"tier_rate"`
	HandoffRate  *float64 `json:"handoff_rate"`
}

// --------------------------------------------
// Bucketed series sharing a window timeline
// --------------------------------------------
type TimeSeries struct {
	Window Window     `json:"window"`
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
	Counts []int      `json:"counts"`
}

// --------------------------------------------
// Agent views
// --------------------------------------------
type SparkPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type AgentPerformance struct {
	Agent         string       `json:"agent"`
	Role          Role         `json:"role"`
	MeanScore     float64      `json:"mean_score"`
	ScoredTickets int          `json:"scored_tickets"`
	Sparkline     []SparkPoint `json:"sparkline"`
	TicketKeys    []string     `json:"ticket_keys"`
}

type AgentMatrixRow struct {
	Agent                   string   `json:"agent"`
	Role                    Role     `json:"role"`
	Tickets                 int      `json:"tickets"`
	AvgFirstResponseMinutes *float64 `json:"avg_first_response_minutes"`
	AvgAgentResponseMinutes *float64 `json:"avg_agent_response_minutes"`
	AvgResolutionMinutes    *float64 `json:"avg_resolution_minutes"`
	ResolvedRate            *float64 `json:"resolved_rate"`
	AvgAgentScore           *float64 `json:"avg_agent_score"`
	EscalatedCount          int      `json:"escalated_count"`
	MisclassifiedCount      int      `json:"misclassified_count"`
}

// --------------------------------------------
// Contact reasons
// --------------------------------------------
type ContactReasonEntry struct {
	Reason        string   `json:"reason"`
	Count         int      `json:"count"`
	Percentage    float64  `json:"percentage"`
	Sparkline     []int    `json:"sparkline"`
	RecentTickets []string `json:"recent_tickets"`
	PreviousCount int      `json:"previous_count"`
	DeltaPct      *float64 `json:"delta_pct"`
}

type ContactReasonSummary struct {
	Window        Window               `json:"window"`
	Total         int                  `json:"total"`
	PreviousTotal int                  `json:"previous_total"`
	Labels        []string             `json:"labels"`
	ReasonCount   int                  `json:"reason_count"`
	Entries       []ContactReasonEntry `json:"entries"`
}

type ContactTopicEntry struct {
	ContactReasonEntry
	SubReasons []ContactReasonEntry `json:"sub_reasons"`
}

type ContactReasonSummaryV2 struct {
	Window        Window              `json:"window"`
	Total         int                 `json:"total"`
	PreviousTotal int                 `json:"previous_total"`
	Labels        []string            `json:"labels"`
	TopicCount    int                 `json:"topic_count"`
	Topics        []ContactTopicEntry `json:"topics"`
}

// --------------------------------------------
// Toxicity leaderboards
// --------------------------------------------
type ToxicityEntry struct {
	Name           string   `json:"name"`
	TotalTickets   int      `json:"total_tickets"`
	AbusiveTickets int      `json:"abusive_tickets"`
	HitCount       int      `json:"hit_count"`
	MeanScore      *float64 `json:"mean_score"`
	MeanToxicity   float64  `json:"mean_toxicity"`
	IssueKeys      []string `json:"issue_keys"`
}

// --------------------------------------------
// Improvement tips
// --------------------------------------------
type ImprovementTipGroup struct {
	Tip       string    `json:"tip"`
	Count     int       `json:"count"`
	IssueKeys []string  `json:"issue_keys"`
	Agents    []string  `json:"agents"`
	LastSeen  time.Time `json:"last_seen"`
}

type ImprovementTipSummary struct {
	Window     Window                `json:"window"`
	TotalTips  int                   `json:"total_tips"`
	UniqueTips int                   `json:"unique_tips"`
	Groups     []ImprovementTipGroup `json:"groups"`
	Top        []ImprovementTipGroup `json:"top"`
}
