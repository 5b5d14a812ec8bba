package notify

import (
	"context"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Log writes actions to the application log. It never fails.
type Log struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*Log)(nil)

// NewLog uses slog.Default when log is nil.
func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{logger: log}
}

// Send logs the action.
func (l *Log) Send(_ context.Context, action domain.Action) domain.NotifyResult {
	l.logger.Info("action pending review",
		"action_id", action.ID,
		"title", action.Title,
		"type", action.Type,
		"priority", action.Priority)
	return domain.NotifyResult{Success: true, Message: "Notification sent for: " + action.Title}
}
