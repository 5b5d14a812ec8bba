package usecase

import (
	"context"
	"fmt"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const entityAction = "action"

// ActionService moves actions through the approval gate.
type ActionService struct {
	actions  ports.ActionRepository
	feedback ports.FeedbackRepository
	now      func() time.Time
}

// NewActionService wires action and feedback storage.
func NewActionService(actions ports.ActionRepository, feedback ports.FeedbackRepository) *ActionService {
	return &ActionService{actions: actions, feedback: feedback, now: time.Now}
}

// Pending lists actions awaiting review.
func (s *ActionService) Pending(ctx context.Context) ([]domain.Action, error) {
	actions, err := s.actions.ListPendingActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending actions: %w", err)
	}
	return actions, nil
}

// Confirm approves a pending action. Feedback is recorded only with a comment.
func (s *ActionService) Confirm(ctx context.Context, id, comment string) (domain.Action, error) {
	action, err := s.transition(ctx, id, domain.ActionConfirmed)
	if err != nil {
		return domain.Action{}, err
	}
	if comment != "" {
		if err := s.record(ctx, id, domain.FeedbackConfirm, comment); err != nil {
			return action, err
		}
	}
	return action, nil
}

// Reject declines a pending action and always records feedback.
func (s *ActionService) Reject(ctx context.Context, id, comment string) (domain.Action, error) {
	action, err := s.transition(ctx, id, domain.ActionRejected)
	if err != nil {
		return domain.Action{}, err
	}
	if err := s.record(ctx, id, domain.FeedbackReject, comment); err != nil {
		return action, err
	}
	return action, nil
}

// MarkExecuted closes a confirmed action.
func (s *ActionService) MarkExecuted(ctx context.Context, id string) (domain.Action, error) {
	return s.transition(ctx, id, domain.ActionExecuted)
}

func (s *ActionService) transition(ctx context.Context, id string, next domain.ActionStatus) (domain.Action, error) {
	action, err := s.actions.GetAction(ctx, id)
	if err != nil {
		return domain.Action{}, fmt.Errorf("load action %s: %w", id, err)
	}
	if !action.Status.CanTransition(next) {
		return domain.Action{}, fmt.Errorf("%w: action %s is %s, cannot become %s", domain.ErrInvalidTransition, id, action.Status, next)
	}

	at := s.now().UTC()
	if err := s.actions.UpdateActionStatus(ctx, id, next, at); err != nil {
		return domain.Action{}, fmt.Errorf("update action %s: %w", id, err)
	}

	action.Status = next
	switch next {
	case domain.ActionConfirmed:
		action.ConfirmedAt = &at
	case domain.ActionExecuted:
		action.ExecutedAt = &at
	}
	return action, nil
}

func (s *ActionService) record(ctx context.Context, id string, kind domain.FeedbackType, comment string) error {
	err := s.feedback.CreateFeedback(ctx, domain.Feedback{
		EntityType: entityAction,
		EntityID:   id,
		Type:       kind,
		Comment:    comment,
	})
	if err != nil {
		return fmt.Errorf("record %s feedback for action %s: %w", kind, id, err)
	}
	return nil
}
