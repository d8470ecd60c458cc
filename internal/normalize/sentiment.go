package normalize

import (
	"encoding/json"
	"strings"

	"convo-insights-go/internal/types"
)

// Sentiment parses a label→weight object (or its JSON string form) into a
// distribution over the canonical labels. Negative weights count as zero. A
// non-positive total yields nil.
func Sentiment(v any) types.SentimentScores {
	obj := sentimentObject(v)
	if obj == nil {
		return nil
	}

	scores := make(types.SentimentScores, len(types.SentimentLabels))
	var sum float64
	for _, label := range types.SentimentLabels {
		w := labelWeight(obj, label)
		scores[label] = w
		sum += w
	}
	if sum <= 0 {
		return nil
	}
	for label, w := range scores {
		scores[label] = w / sum
	}
	return scores
}

func sentimentObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[string]float64:
		out := make(map[string]any, len(t))
		for k, f := range t {
			out[k] = f
		}
		return out
	case types.SentimentScores:
		out := make(map[string]any, len(t))
		for k, f := range t {
			out[string(k)] = f
		}
		return out
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}

func labelWeight(obj map[string]any, label types.SentimentLabel) float64 {
	name := string(label)
	for _, key := range []string{name, strings.ToLower(name), snakeCase(name)} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if f := Number(v); f != nil && *f > 0 {
			return *f
		}
		return 0
	}
	return 0
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

type primaryRule struct {
	when  func(explicit *types.SentimentLabel, scores types.SentimentScores) bool
	value func(explicit *types.SentimentLabel, scores types.SentimentScores) *types.SentimentLabel
}

var primaryRules = []primaryRule{
	{
		when:  func(e *types.SentimentLabel, _ types.SentimentScores) bool { return e != nil },
		value: func(e *types.SentimentLabel, _ types.SentimentScores) *types.SentimentLabel { return e },
	},
	{
		when:  func(_ *types.SentimentLabel, s types.SentimentScores) bool { return len(s) > 0 },
		value: func(_ *types.SentimentLabel, s types.SentimentScores) *types.SentimentLabel { return argMax(s) },
	},
}

// PrimarySentiment is the explicit label if it names a canonical label, else the
// distribution's arg-max, else nil.
func PrimarySentiment(explicit any, scores types.SentimentScores) *types.SentimentLabel {
	label := canonicalLabel(Text(explicit))
	for _, rule := range primaryRules {
		if rule.when(label, scores) {
			return rule.value(label, scores)
		}
	}
	return nil
}

func canonicalLabel(s string) *types.SentimentLabel {
	if s == "" {
		return nil
	}
	for _, label := range types.SentimentLabels {
		if strings.EqualFold(string(label), s) {
			l := label
			return &l
		}
	}
	return nil
}

// argMax ties resolve to the earliest label in canonical order.
func argMax(scores types.SentimentScores) *types.SentimentLabel {
	var best *types.SentimentLabel
	bestScore := 0.0
	for _, label := range types.SentimentLabels {
		if w := scores[label]; w > bestScore {
			l := label
			best, bestScore = &l, w
		}
	}
	return best
}
