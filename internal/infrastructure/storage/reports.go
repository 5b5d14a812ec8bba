package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ContentCurator/internal/domain"
)

var actionColumns = []string{
	"id", "report_id", "action_type", "title", "description", "priority", "status",
	"created_at", "confirmed_at", "executed_at",
}

// CreateReport inserts a new report in pending status.
func (s *Store) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = domain.ReportPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.utcNow()
	}
	content, err := encodeJSON(r.Content)
	if err != nil {
		return domain.Report{}, err
	}

	_, err = s.exec(ctx, s.sb.Insert("reports").
		Columns("id", "topic_id", "report_type", "title", "summary", "content", "status", "created_at", "reviewed_at").
		Values(r.ID, r.TopicID, string(r.Type), r.Title, r.Summary, content, string(r.Status), r.CreatedAt.UTC(), nullableTime(r.ReviewedAt)))
	if err != nil {
		return domain.Report{}, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

// ListReports returns reports of a topic, newest first.
func (s *Store) ListReports(ctx context.Context, topicID string) ([]domain.Report, error) {
	rows, err := s.query(ctx, s.sb.
		Select("id", "topic_id", "report_type", "title", "summary", "content", "status", "created_at", "reviewed_at").
		From("reports").
		Where(sq.Eq{"topic_id": topicID}).
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var (
			r          domain.Report
			kind       string
			status     string
			content    sql.NullString
			createdAt  sql.NullTime
			reviewedAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.TopicID, &kind, &r.Title, &r.Summary, &content, &status, &createdAt, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Type = domain.ReportType(kind)
		r.Status = domain.ReportStatus(status)
		r.CreatedAt = createdAt.Time.UTC()
		r.ReviewedAt = timePtr(reviewedAt)
		if err := decodeJSON(content, &r.Content); err != nil {
			return nil, fmt.Errorf("report %s content: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// CreateAction inserts a new action in pending status.
func (s *Store) CreateAction(ctx context.Context, a domain.Action) (domain.Action, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = domain.ActionPending
	}
	if a.Priority == "" {
		a.Priority = domain.PriorityMedium
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.utcNow()
	}

	_, err := s.exec(ctx, s.sb.Insert("actions").
		Columns(actionColumns...).
		Values(a.ID, a.ReportID, a.Type, a.Title, a.Description, a.Priority, string(a.Status),
			a.CreatedAt.UTC(), nullableTime(a.ConfirmedAt), nullableTime(a.ExecutedAt)))
	if err != nil {
		return domain.Action{}, fmt.Errorf("insert action: %w", err)
	}
	return a, nil
}

// ListPendingActions returns actions awaiting review, newest first.
func (s *Store) ListPendingActions(ctx context.Context) ([]domain.Action, error) {
	return s.listActions(ctx, sq.Eq{"status": string(domain.ActionPending)})
}

// ListActionsByReport returns the actions attached to a report.
func (s *Store) ListActionsByReport(ctx context.Context, reportID string) ([]domain.Action, error) {
	return s.listActions(ctx, sq.Eq{"report_id": reportID})
}

// GetAction loads one action.
func (s *Store) GetAction(ctx context.Context, id string) (domain.Action, error) {
	actions, err := s.listActions(ctx, sq.Eq{"id": id})
	if err != nil {
		return domain.Action{}, err
	}
	if len(actions) == 0 {
		return domain.Action{}, domain.ErrNotFound
	}
	return actions[0], nil
}

// UpdateActionStatus moves an action to status and stamps the matching time column.
func (s *Store) UpdateActionStatus(ctx context.Context, id string, status domain.ActionStatus, at time.Time) error {
	b := s.sb.Update("actions").Set("status", string(status)).Where(sq.Eq{"id": id})
	switch status {
	case domain.ActionConfirmed:
		b = b.Set("confirmed_at", at.UTC())
	case domain.ActionExecuted:
		b = b.Set("executed_at", at.UTC())
	}

	res, err := s.exec(ctx, b)
	if err != nil {
		return fmt.Errorf("update action %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) listActions(ctx context.Context, where sq.Sqlizer) ([]domain.Action, error) {
	rows, err := s.query(ctx, s.sb.Select(actionColumns...).From("actions").Where(where).OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []domain.Action
	for rows.Next() {
		var (
			a           domain.Action
			status      string
			createdAt   sql.NullTime
			confirmedAt sql.NullTime
			executedAt  sql.NullTime
		)
		err := rows.Scan(&a.ID, &a.ReportID, &a.Type, &a.Title, &a.Description, &a.Priority, &status,
			&createdAt, &confirmedAt, &executedAt)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Status = domain.ActionStatus(status)
		a.CreatedAt = createdAt.Time.UTC()
		a.ConfirmedAt = timePtr(confirmedAt)
		a.ExecutedAt = timePtr(executedAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

