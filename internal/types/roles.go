package types

import "strings"

// Role is the escalation tier an agent is mapped to.
type Role string

const (
	RoleTier1    Role = "TIER1"
	RoleTier2    Role = "TIER2"
	RoleNonAgent Role = "NON_AGENT"
)

// ParseRole returns the role for a cell value and whether it was recognised.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleTier1:
		return RoleTier1, true
	case RoleTier2:
		return RoleTier2, true
	case RoleNonAgent:
		return RoleNonAgent, true
	}
	return "", false
}

// Settings drive the toxicity fallback chain.
type Settings struct {
	ToxicityThreshold      float64 `json:"toxicity_threshold"`
	AbusiveCapsTrigger     float64 `json:"abusive_caps_trigger"`
	MinMessagesForToxicity int     `json:"min_messages_for_toxicity"`
}

func DefaultSettings() Settings {
	return Settings{
		ToxicityThreshold:      0.5,
		AbusiveCapsTrigger:     3,
		MinMessagesForToxicity: 1,
	}
}
