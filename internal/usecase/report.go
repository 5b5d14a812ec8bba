package usecase

import (
	"context"
	"fmt"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// switchConfidence is the confidence a comparison must exceed before a switch
// is suggested; above highSwitchConfidence the action is high priority.
const (
	switchConfidence     = 0.7
	highSwitchConfidence = 0.8
)

// Action types produced by the generator.
const (
	ActionTry      = "try"
	ActionResearch = "research"
	ActionSwitch   = "switch"
	ActionReview   = "review"
)

// ReportGenerator turns analyses into reports with follow-up actions.
type ReportGenerator struct {
	reports ports.ReportRepository
	actions ports.ActionRepository
	now     func() time.Time
}

// NewReportGenerator wires report and action storage.
func NewReportGenerator(reports ports.ReportRepository, actions ports.ActionRepository) *ReportGenerator {
	return &ReportGenerator{reports: reports, actions: actions, now: time.Now}
}

// NewToolReport records a new_tool report for an actionable analysis and the
// action matching its recommendation.
func (g *ReportGenerator) NewToolReport(ctx context.Context, topicID string, ia domain.ItemAnalysis) (domain.Report, error) {
	toolName := ia.ItemTitle
	if toolName == "" {
		toolName = "Unknown"
	}
	recommendation := ia.Analysis.Recommendation()
	if recommendation == "" {
		recommendation = domain.RecommendConsider
	}

	var sourceURL any
	if ia.ItemURL != "" {
		sourceURL = ia.ItemURL
	}

	report, err := g.reports.CreateReport(ctx, domain.Report{
		TopicID: topicID,
		Type:    domain.ReportNewTool,
		Title:   "New tool discovered: " + toolName,
		Summary: ia.Analysis.Summary(),
		Content: map[string]any{
			"tool_name":      toolName,
			"source_url":     sourceURL,
			"recommendation": recommendation,
			"analysis":       map[string]any(ia.Analysis),
			"source_item_id": ia.ItemID,
		},
		CreatedAt: g.now().UTC(),
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("create report for item %s: %w", ia.ItemID, err)
	}

	switch recommendation {
	case domain.RecommendRecommend:
		_, err = g.createAction(ctx, report.ID, ActionTry, "Try the new tool", ia.Analysis.Summary(), domain.PriorityHigh)
	case domain.RecommendConsider:
		_, err = g.createAction(ctx, report.ID, ActionResearch, "Research further", "Gather more information and evaluate", domain.PriorityMedium)
	}
	if err != nil {
		return report, err
	}
	return report, nil
}

// WeeklyReport stores a best_practice report from a trend summary and one
// review action per suggested action item.
func (g *ReportGenerator) WeeklyReport(ctx context.Context, topicID string, summary domain.Analysis) (domain.Report, []domain.Action, error) {
	now := g.now().UTC()
	actionItems := nonNil(summary.StringList("action_items"))

	report, err := g.reports.CreateReport(ctx, domain.Report{
		TopicID: topicID,
		Type:    domain.ReportBestPractice,
		Title:   fmt.Sprintf("Weekly AI coding trends (%s)", now.Format("2006-01-02")),
		Summary: summary.Summary(),
		Content: map[string]any{
			"key_trends":          nonNil(summary.StringList("key_trends")),
			"best_practices":      nonNil(summary.StringList("best_practices")),
			"principle_aligned":   nonNil(summary.StringList("principle_aligned")),
			"principle_conflicts": nonNil(summary.StringList("principle_conflicts")),
			"action_items":        actionItems,
		},
		CreatedAt: now,
	})
	if err != nil {
		return domain.Report{}, nil, fmt.Errorf("create weekly report: %w", err)
	}

	actions := make([]domain.Action, 0, len(actionItems))
	for _, item := range actionItems {
		action, err := g.createAction(ctx, report.ID, ActionReview, item, "", domain.PriorityMedium)
		if err != nil {
			return report, actions, err
		}
		actions = append(actions, action)
	}
	return report, actions, nil
}

// Comparison is one candidate judged against the current tool of a category.
type Comparison struct {
	ItemID   string          `json:"item_id"`
	Item     string          `json:"item"`
	URL      string          `json:"url,omitempty"`
	Analysis domain.Analysis `json:"analysis"`
}

// BestAlternative returns the first comparison recommending a switch with
// confidence above 0.7.
func BestAlternative(comparisons []Comparison) (Comparison, bool) {
	for _, c := range comparisons {
		if c.Analysis.ShouldSwitch() && c.Analysis.Confidence() > switchConfidence {
			return c, true
		}
	}
	return Comparison{}, false
}

// ComparisonReport stores a comparison report for a stack category. When a
// best alternative exists a switch action is created for it.
func (g *ReportGenerator) ComparisonReport(ctx context.Context, topicID, category, currentTool string, comparisons []Comparison) (domain.Report, *domain.Action, error) {
	if comparisons == nil {
		comparisons = []Comparison{}
	}
	best, found := BestAlternative(comparisons)

	summary := fmt.Sprintf("Alternatives to %s for %s", currentTool, category)
	var bestContent any
	if found {
		summary += " - consider " + best.Item
		bestContent = best
	}

	report, err := g.reports.CreateReport(ctx, domain.Report{
		TopicID: topicID,
		Type:    domain.ReportComparison,
		Title:   "Current stack comparison: " + category,
		Summary: summary,
		Content: map[string]any{
			"category":         category,
			"current_tool":     currentTool,
			"comparisons":      comparisons,
			"best_alternative": bestContent,
		},
		CreatedAt: g.now().UTC(),
	})
	if err != nil {
		return domain.Report{}, nil, fmt.Errorf("create comparison report: %w", err)
	}
	if !found {
		return report, nil, nil
	}

	priority := domain.PriorityMedium
	if best.Analysis.Confidence() > highSwitchConfidence {
		priority = domain.PriorityHigh
	}
	action, err := g.createAction(ctx, report.ID, ActionSwitch, "Evaluate switching to "+best.Item, best.Analysis.Summary(), priority)
	if err != nil {
		return report, nil, err
	}
	return report, &action, nil
}

func (g *ReportGenerator) createAction(ctx context.Context, reportID, actionType, title, description, priority string) (domain.Action, error) {
	action, err := g.actions.CreateAction(ctx, domain.Action{
		ReportID:    reportID,
		Type:        actionType,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      domain.ActionPending,
		CreatedAt:   g.now().UTC(),
	})
	if err != nil {
		return domain.Action{}, fmt.Errorf("create %s action for report %s: %w", actionType, reportID, err)
	}
	return action, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
