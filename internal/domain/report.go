package domain

import "time"

// ReportType classifies generated reports.
type ReportType string

const (
	ReportNewTool      ReportType = "new_tool"
	ReportComparison   ReportType = "comparison"
	ReportBestPractice ReportType = "best_practice"
)

// ReportStatus tracks human review of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportArchived ReportStatus = "archived"
)

// Report is a generated recommendation awaiting review.
type Report struct {
	ID         string         `json:"id"`
	TopicID    string         `json:"topic_id"`
	Type       ReportType     `json:"report_type"`
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	Content    map[string]any `json:"content"`
	Status     ReportStatus   `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
}

// ActionStatus tracks the approval gate of an action.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionConfirmed ActionStatus = "confirmed"
	ActionRejected  ActionStatus = "rejected"
	ActionExecuted  ActionStatus = "executed"
)

// CanTransition reports whether moving to next keeps the status monotonic.
func (s ActionStatus) CanTransition(next ActionStatus) bool {
	switch s {
	case ActionPending:
		return next == ActionConfirmed || next == ActionRejected
	case ActionConfirmed:
		return next == ActionExecuted
	default:
		return false
	}
}

// Priority values used for actions.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Action is a follow-up task derived from a report.
type Action struct {
	ID          string       `json:"id"`
	ReportID    string       `json:"report_id"`
	Type        string       `json:"action_type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    string       `json:"priority"`
	Status      ActionStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ConfirmedAt *time.Time   `json:"confirmed_at,omitempty"`
	ExecutedAt  *time.Time   `json:"executed_at,omitempty"`
}

// NotifyResult is what a notifier reports for one action.
type NotifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
