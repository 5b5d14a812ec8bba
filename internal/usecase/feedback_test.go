package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestAnalyzeFeedback(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	l := NewLearner(store, store)

	stats, err := l.AnalyzeFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackStats{}, stats)

	store.feedback = []domain.Feedback{
		{Type: domain.FeedbackConfirm},
		{Type: domain.FeedbackConfirm},
		{Type: domain.FeedbackConfirm},
		{Type: domain.FeedbackReject},
	}
	stats, err = l.AnalyzeFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Confirms)
	assert.Equal(t, 1, stats.Rejects)
	assert.InDelta(t, 0.75, stats.ConfirmRate, 1e-9)
}

func TestAdjustConfidenceClamps(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.principles = []domain.Principle{{ID: "p", Content: "Local first", Confidence: 0.5, Active: true}}
	l := NewLearner(store, store)
	ctx := context.Background()

	got, err := l.AdjustConfidence(ctx, "p", 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, got, 1e-9)

	got, err = l.AdjustConfidence(ctx, "p", 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = l.AdjustConfidence(ctx, "p", -3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, 0.0, store.principles[0].Confidence)

	_, err = l.AdjustConfidence(ctx, "missing", 0.1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuggestRefinements(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.principles = []domain.Principle{
		{ID: "weak", Content: "Always use tabs", Confidence: 0.1, Active: true},
		{ID: "edge", Content: "Exactly at the line", Confidence: 0.3, Active: true},
		{ID: "off", Content: "Inactive", Confidence: 0.05, Active: false},
	}

	out, err := NewLearner(store, store).SuggestRefinements(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "weak", out[0].PrincipleID)
	assert.Equal(t, "Consider reviewing or deactivating this principle", out[0].Suggestion)
}
