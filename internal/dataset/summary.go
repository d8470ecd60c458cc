package dataset

import (
	"sort"
	"time"

	"convo-insights-go/internal/types"
)

const topReasonCount = 5

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// DatasetSummary is a compact, window-independent overview of the loaded rows.
type DatasetSummary struct {
	TotalConversations int            `json:"total_conversations"`
	Resolved           int            `json:"resolved"`
	Undated            int            `json:"undated"`
	DistinctAgents     int            `json:"distinct_agents"`
	DistinctCustomers  int            `json:"distinct_customers"`
	Earliest           *time.Time     `json:"earliest"`
	Latest             *time.Time     `json:"latest"`
	ByHub              map[string]int `json:"by_hub"`
	TopReasons         []ReasonCount  `json:"top_reasons"`
}

func Summarize(rows []types.ConversationRow) DatasetSummary {
	ds := DatasetSummary{
		TotalConversations: len(rows),
		ByHub:              map[string]int{},
	}
	agents := map[string]struct{}{}
	customers := map[string]struct{}{}
	reasons := map[string]int{}

	for _, r := range rows {
		if r.Resolved {
			ds.Resolved++
		}
		for _, a := range r.AgentList {
			if a != types.UnassignedAgent {
				agents[a] = struct{}{}
			}
		}
		for _, c := range r.CustomerList {
			if c != types.UnknownCustomer {
				customers[c] = struct{}{}
			}
		}
		if r.Raw.Hub != "" {
			ds.ByHub[r.Raw.Hub]++
		}

		reason := r.ContactReason
		if reason == "" {
			reason = r.ContactReasonOriginal
		}
		if reason == "" {
			reason = types.UnspecifiedReason
		}
		reasons[reason]++

		ref := r.ReferenceTime()
		if ref == nil {
			ds.Undated++
			continue
		}
		if ds.Earliest == nil || ref.Before(*ds.Earliest) {
			t := *ref
			ds.Earliest = &t
		}
		if ds.Latest == nil || ref.After(*ds.Latest) {
			t := *ref
			ds.Latest = &t
		}
	}
	ds.DistinctAgents = len(agents)
	ds.DistinctCustomers = len(customers)

	var arr []ReasonCount
	for k, v := range reasons {
		arr = append(arr, ReasonCount{Reason: k, Count: v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Reason < arr[j].Reason
	})
	if len(arr) > topReasonCount {
		arr = arr[:topReasonCount]
	}
	ds.TopReasons = arr
	return ds
}
