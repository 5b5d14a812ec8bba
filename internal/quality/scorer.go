// Package quality scores collected items for relevance before analysis.
package quality

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
)

// DefaultThreshold is the minimum total score for an item to be analyzed.
const DefaultThreshold = 50.0

// Factor keys reported in the breakdown.
const (
	FactorContentLength = "content_length"
	FactorHasURL        = "has_url"
	FactorRecency       = "recency"
	FactorReputation    = "reputation"
	FactorKeywords      = "keyword_relevance"
	FactorEngagement    = "engagement"
)

// Point ceilings per factor; they sum to 100.
const (
	maxContentLength = 20.0
	maxHasURL        = 10.0
	maxRecency       = 20.0
	maxReputation    = 15.0
	maxKeywords      = 25.0
	maxEngagement    = 10.0
)

var defaultReputation = map[domain.SourceKind]float64{
	domain.KindGitHub:  80,
	domain.KindFeed:    60,
	domain.KindTwitter: 50,
	domain.KindWeb:     40,
}

// DefaultKeywords is used when neither the topic nor the source lists keywords.
var DefaultKeywords = []string{
	"claude", "cursor", "copilot", "ai coding", "llm",
	"terminal", "ghostty", "warp", "mcp", "agent",
}

// Scorer computes the six-factor quality score. It has no side effects.
type Scorer struct {
	now func() time.Time
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithClock overrides the reference clock used for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScorer builds a scorer using the wall clock unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates item against its source and optional topic. A non-positive
// threshold selects DefaultThreshold.
func (s *Scorer) Score(item domain.CollectedItem, src domain.Source, topic *domain.Topic, threshold float64) domain.QualityResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	breakdown := map[string]float64{
		FactorContentLength: ContentLengthScore(item.Content),
		FactorHasURL:        urlScore(item.URL),
		FactorRecency:       RecencyScore(referenceTime(item), s.now()),
		FactorReputation:    ReputationScore(src),
		FactorKeywords:      KeywordScore(item, src, topic),
		FactorEngagement:    EngagementScore(item.Metadata),
	}

	var total float64
	for _, v := range breakdown {
		total += v
	}

	return domain.QualityResult{
		Score:         math.Round(total*100) / 100,
		Breakdown:     breakdown,
		ShouldProcess: total >= threshold,
	}
}

// ContentLengthScore ramps linearly from 50 to 200 characters.
func ContentLengthScore(content string) float64 {
	n := utf8.RuneCountInString(content)
	switch {
	case n < 50:
		return 0
	case n >= 200:
		return maxContentLength
	default:
		return float64(n-50) / 150 * maxContentLength
	}
}

func urlScore(url string) float64 {
	if strings.TrimSpace(url) != "" {
		return maxHasURL
	}
	return 0
}

// RecencyScore buckets the age of ref relative to now. A zero ref scores the
// middle bucket.
func RecencyScore(ref, now time.Time) float64 {
	if ref.IsZero() {
		return 10
	}
	age := now.UTC().Sub(ref.UTC())
	switch {
	case age < 24*time.Hour:
		return maxRecency
	case age < 7*24*time.Hour:
		return 15
	case age < 30*24*time.Hour:
		return 10
	default:
		return 5
	}
}

// ReputationScore uses the source override or the per-kind default.
func ReputationScore(src domain.Source) float64 {
	if rep, ok := collector.Options(src.Config).Float("reputation_score"); ok {
		return math.Max(0, math.Min(maxReputation, rep*0.15))
	}
	rep, ok := defaultReputation[src.Kind]
	if !ok {
		rep = defaultReputation[domain.KindWeb]
	}
	return rep * 0.15
}

// KeywordScore is the matched fraction of the effective keyword list.
func KeywordScore(item domain.CollectedItem, src domain.Source, topic *domain.Topic) float64 {
	keywords := EffectiveKeywords(src, topic)
	if len(keywords) == 0 {
		return 0
	}

	text := strings.ToLower(item.Title + " " + item.Content)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords)) * maxKeywords
}

// EffectiveKeywords applies topic > source > default precedence.
func EffectiveKeywords(src domain.Source, topic *domain.Topic) []string {
	if topic != nil && len(topic.Keywords) > 0 {
		return topic.Keywords
	}
	if kws := collector.Options(src.Config).Strings("keywords"); len(kws) > 0 {
		return kws
	}
	return DefaultKeywords
}

// EngagementScore buckets likes + retweets + stars.
func EngagementScore(meta map[string]any) float64 {
	opts := collector.Options(meta)
	total := 0.0
	for _, key := range []string{domain.MetaLikes, domain.MetaRetweets, domain.MetaStars} {
		if v, ok := opts.Float(key); ok && v > 0 {
			total += v
		}
	}
	switch {
	case total >= 100:
		return maxEngagement
	case total >= 50:
		return 7
	case total >= 10:
		return 4
	case total > 0:
		return 2
	default:
		return 0
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// referenceTime prefers the publish timestamp over the collection time.
// Timestamps without a zone are read as UTC.
func referenceTime(item domain.CollectedItem) time.Time {
	switch v := item.Metadata[domain.MetaPublishedAt].(type) {
	case time.Time:
		if !v.IsZero() {
			return v
		}
	case *time.Time:
		if v != nil && !v.IsZero() {
			return *v
		}
	case string:
		if t, ok := ParseTimestamp(v); ok {
			return t
		}
	}
	return item.CollectedAt
}

// ParseTimestamp accepts ISO-8601 variants, with or without a zone.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
