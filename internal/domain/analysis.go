package domain

import (
	"encoding/json"
	"strings"
)

// Recommendation values produced by the analysis backend.
const (
	RecommendRecommend = "recommend"
	RecommendConsider  = "consider"
	RecommendSkip      = "skip"
)

// Analysis is the decoded analysis payload for one item. Unknown fields are
// kept so reports can store the raw structure.
type Analysis map[string]any

// Recommendation returns the normalized recommendation, or "" when absent.
func (a Analysis) Recommendation() string {
	v, _ := a["recommendation"].(string)
	return strings.ToLower(strings.TrimSpace(v))
}

// Summary returns the summary field if present.
func (a Analysis) Summary() string {
	v, _ := a["summary"].(string)
	return v
}

// Degraded reports whether the payload could not be parsed.
func (a Analysis) Degraded() bool {
	v, _ := a["parse_error"].(bool)
	return v
}

// Actionable reports whether the recommendation warrants a report.
func (a Analysis) Actionable() bool {
	switch a.Recommendation() {
	case RecommendRecommend, RecommendConsider:
		return true
	default:
		return false
	}
}

// ShouldSwitch reports whether a stack comparison favours the new tool.
func (a Analysis) ShouldSwitch() bool {
	v, _ := a["should_switch"].(bool)
	return v
}

// Confidence returns the numeric confidence field, or 0 when absent.
func (a Analysis) Confidence() float64 {
	v, _ := a["confidence"].(float64)
	return v
}

// StringList reads a string slice field, ignoring non-string entries.
func (a Analysis) StringList(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseAnalysis decodes a JSON object from model output. Markdown code fences
// are stripped first. Anything unparseable becomes a degraded payload carrying
// the raw text.
func ParseAnalysis(raw string) Analysis {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return Analysis{"raw_response": raw, "parse_error": true}
	}
	return Analysis(parsed)
}

// ItemAnalysis pairs an analyzed item with its result.
type ItemAnalysis struct {
	ItemID    string
	ItemTitle string
	ItemURL   string
	Analysis  Analysis
}
