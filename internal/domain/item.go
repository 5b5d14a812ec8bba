package domain

import "time"

// Metadata keys shared by adapters and the scorer.
const (
	MetaPublishedAt = "published_at"
	MetaLikes       = "likes"
	MetaRetweets    = "retweets"
	MetaStars       = "stars"
)

// CollectedItem is one normalized unit of content fetched from a source.
// (SourceID, ExternalID) is unique.
type CollectedItem struct {
	ID          string
	SourceID    string
	ExternalID  string
	Title       string
	Content     string
	URL         string
	Metadata    map[string]any
	CollectedAt time.Time

	QualityScore     *float64
	QualityBreakdown map[string]float64
	FilteredOut      bool
	ProcessedAt      *time.Time
}

// QualityResult is the scorer output for one item.
type QualityResult struct {
	Score         float64            `json:"score"`
	Breakdown     map[string]float64 `json:"breakdown"`
	ShouldProcess bool               `json:"should_process"`
}
