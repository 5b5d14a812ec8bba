package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// TopicRepository resolves topics by id or name.
type TopicRepository interface {
	GetTopic(ctx context.Context, id string) (domain.Topic, error)
	GetTopicByName(ctx context.Context, name string) (domain.Topic, error)
}

// SourceRepository loads configured sources and records collection attempts.
type SourceRepository interface {
	ListActiveSources(ctx context.Context, topicID string) ([]domain.Source, error)
	ListSourcesByIDs(ctx context.Context, ids []string) ([]domain.Source, error)
	ListSourceIDsByTopic(ctx context.Context, topicID string) ([]string, error)
	TouchCollected(ctx context.Context, sourceID string, at time.Time) error
}

// ItemRepository persists collected items and the scorer/processor fields.
type ItemRepository interface {
	UpsertItem(ctx context.Context, item domain.CollectedItem) error
	ListUnscored(ctx context.Context, limit int) ([]domain.CollectedItem, error)
	ListUnprocessed(ctx context.Context, sourceIDs []string, limit int) ([]domain.CollectedItem, error)
	ListCollectedSince(ctx context.Context, since time.Time, limit int) ([]domain.CollectedItem, error)
	UpdateQuality(ctx context.Context, itemID string, result domain.QualityResult) error
	MarkProcessed(ctx context.Context, itemID string, at time.Time) error
	ResetProcessed(ctx context.Context, sourceIDs []string) (int, error)
}

// PrincipleRepository reads and tunes principles.
type PrincipleRepository interface {
	ListActivePrinciples(ctx context.Context, limit int) ([]domain.Principle, error)
	ListLowConfidence(ctx context.Context, below float64) ([]domain.Principle, error)
	GetPrinciple(ctx context.Context, id string) (domain.Principle, error)
	UpdateConfidence(ctx context.Context, id string, confidence float64) error
}

// ReportRepository stores generated reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report domain.Report) (domain.Report, error)
}

// ActionRepository stores follow-up actions.
type ActionRepository interface {
	CreateAction(ctx context.Context, action domain.Action) (domain.Action, error)
	ListPendingActions(ctx context.Context) ([]domain.Action, error)
	GetAction(ctx context.Context, id string) (domain.Action, error)
	UpdateActionStatus(ctx context.Context, id string, status domain.ActionStatus, at time.Time) error
}

// FeedbackRepository stores review signals.
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, fb domain.Feedback) error
	ListFeedback(ctx context.Context) ([]domain.Feedback, error)
}

// Analyzer is the external text-completion capability.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Notifier delivers pending actions to people.
type Notifier interface {
	Send(ctx context.Context, action domain.Action) domain.NotifyResult
}

// RunArchiver keeps a copy of each pipeline run report.
type RunArchiver interface {
	ArchiveRun(ctx context.Context, result domain.RunResult) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	AddJob(spec string, name string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
