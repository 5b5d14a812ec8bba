package domain

import "time"

// Stage names in execution order.
const (
	StageCollect       = "collect"
	StageQualityFilter = "quality_filter"
	StageProcess       = "process"
	StageReports       = "reports"
	StageNotify        = "notify"
)

// StageResult captures what one stage did.
type StageResult struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
	Counts   map[string]int  `json:"counts,omitempty"`
	Sources  []SourceOutcome `json:"sources,omitempty"`
	Messages []string        `json:"messages,omitempty"`
}

// RunResult aggregates a single pipeline invocation.
type RunResult struct {
	RunID       string                 `json:"run_id"`
	TopicID     string                 `json:"topic_id,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Stages      map[string]StageResult `json:"stages"`
	Errors      []string               `json:"errors"`
	Success     bool                   `json:"success"`
}
