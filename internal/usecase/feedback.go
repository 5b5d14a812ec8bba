package usecase

import (
	"context"
	"fmt"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	lowConfidence        = 0.3
	refinementSuggestion = "Consider reviewing or deactivating this principle"
)

// Learner aggregates review feedback and tunes principle confidence.
type Learner struct {
	feedback   ports.FeedbackRepository
	principles ports.PrincipleRepository
}

// NewLearner wires feedback and principle storage.
func NewLearner(feedback ports.FeedbackRepository, principles ports.PrincipleRepository) *Learner {
	return &Learner{feedback: feedback, principles: principles}
}

// AnalyzeFeedback counts confirms and rejects across all feedback.
func (l *Learner) AnalyzeFeedback(ctx context.Context) (domain.FeedbackStats, error) {
	all, err := l.feedback.ListFeedback(ctx)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("list feedback: %w", err)
	}

	stats := domain.FeedbackStats{Total: len(all)}
	for _, fb := range all {
		switch fb.Type {
		case domain.FeedbackConfirm:
			stats.Confirms++
		case domain.FeedbackReject:
			stats.Rejects++
		}
	}
	if stats.Total > 0 {
		stats.ConfirmRate = float64(stats.Confirms) / float64(stats.Total)
	}
	return stats, nil
}

// AdjustConfidence shifts a principle's confidence by delta, clamped to [0, 1],
// and returns the stored value.
func (l *Learner) AdjustConfidence(ctx context.Context, principleID string, delta float64) (float64, error) {
	p, err := l.principles.GetPrinciple(ctx, principleID)
	if err != nil {
		return 0, fmt.Errorf("load principle %s: %w", principleID, err)
	}

	next := min(1, max(0, p.Confidence+delta))
	if err := l.principles.UpdateConfidence(ctx, principleID, next); err != nil {
		return 0, fmt.Errorf("update principle %s: %w", principleID, err)
	}
	return next, nil
}

// SuggestRefinements lists active principles whose confidence fell below 0.3.
func (l *Learner) SuggestRefinements(ctx context.Context) ([]domain.Refinement, error) {
	low, err := l.principles.ListLowConfidence(ctx, lowConfidence)
	if err != nil {
		return nil, fmt.Errorf("list low confidence principles: %w", err)
	}

	out := make([]domain.Refinement, 0, len(low))
	for _, p := range low {
		out = append(out, domain.Refinement{
			PrincipleID: p.ID,
			Content:     p.Content,
			Confidence:  p.Confidence,
			Suggestion:  refinementSuggestion,
		})
	}
	return out, nil
}
