package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ContentCurator/internal/domain"
)

// CreateFeedback records a review signal.
func (s *Store) CreateFeedback(ctx context.Context, fb domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, s.sb.Insert("feedback").
		Columns("id", "entity_type", "entity_id", "feedback_type", "comment", "created_at").
		Values(fb.ID, fb.EntityType, fb.EntityID, string(fb.Type), fb.Comment, s.utcNow()))
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListFeedback returns every feedback record.
func (s *Store) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := s.query(ctx, s.sb.
		Select("id", "entity_type", "entity_id", "feedback_type", "comment").
		From("feedback").
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var (
			fb   domain.Feedback
			kind string
		)
		if err := rows.Scan(&fb.ID, &fb.EntityType, &fb.EntityID, &kind, &fb.Comment); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		fb.Type = domain.FeedbackType(kind)
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
