package domain

// Principle is an extracted user preference used to steer analysis.
type Principle struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Active     bool    `json:"active"`
}

// FeedbackType enumerates review signals.
type FeedbackType string

const (
	FeedbackConfirm FeedbackType = "confirm"
	FeedbackReject  FeedbackType = "reject"
)

// Feedback is a user review signal attached to an entity.
type Feedback struct {
	ID         string
	EntityType string
	EntityID   string
	Type       FeedbackType
	Comment    string
}

// FeedbackStats aggregates review signals.
type FeedbackStats struct {
	Total       int     `json:"total"`
	Confirms    int     `json:"confirms"`
	Rejects     int     `json:"rejects"`
	ConfirmRate float64 `json:"confirm_rate"`
}

// Refinement suggests revisiting a low-confidence principle.
type Refinement struct {
	PrincipleID string  `json:"principle_id"`
	Content     string  `json:"content"`
	Confidence  float64 `json:"confidence"`
	Suggestion  string  `json:"suggestion"`
}
