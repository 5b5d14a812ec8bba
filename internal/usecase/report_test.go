package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestNewToolReportActions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		analysis domain.Analysis
		wantType string
		wantPrio string
		wantDesc string
	}{
		{"recommend", domain.Analysis{"recommendation": "recommend", "summary": "Fast and local."}, ActionTry, domain.PriorityHigh, "Fast and local."},
		{"consider", domain.Analysis{"recommendation": "Consider"}, ActionResearch, domain.PriorityMedium, "Gather more information and evaluate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			g := NewReportGenerator(store, store)
			report, err := g.NewToolReport(context.Background(), "topic", domain.ItemAnalysis{
				ItemID:    "item-1",
				ItemTitle: "Zed agent panel",
				ItemURL:   "https://zed.dev/blog",
				Analysis:  tc.analysis,
			})
			require.NoError(t, err)

			assert.Equal(t, "New tool discovered: Zed agent panel", report.Title)
			assert.Equal(t, domain.ReportNewTool, report.Type)
			assert.Equal(t, "https://zed.dev/blog", report.Content["source_url"])
			assert.Equal(t, "item-1", report.Content["source_item_id"])

			require.Len(t, store.actions, 1)
			action := store.actions[0]
			assert.Equal(t, report.ID, action.ReportID)
			assert.Equal(t, tc.wantType, action.Type)
			assert.Equal(t, tc.wantPrio, action.Priority)
			assert.Equal(t, tc.wantDesc, action.Description)
			assert.Equal(t, domain.ActionPending, action.Status)
		})
	}
}

func TestNewToolReportDefaults(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	report, err := NewReportGenerator(store, store).NewToolReport(context.Background(), "topic", domain.ItemAnalysis{
		ItemID:   "item-1",
		Analysis: domain.Analysis{"recommendation": "consider"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New tool discovered: Unknown", report.Title)
	assert.Nil(t, report.Content["source_url"])
}

func TestWeeklyReportWithoutActionItems(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	report, actions, err := NewReportGenerator(store, store).WeeklyReport(context.Background(), "topic", domain.Analysis{"summary": "Quiet week."})
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.Equal(t, domain.ReportBestPractice, report.Type)
	assert.Contains(t, report.Title, "Weekly AI coding trends (")
	assert.Equal(t, []string{}, report.Content["action_items"])
	assert.Equal(t, "Quiet week.", report.Summary)
}
