package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ContentCurator/internal/domain"
)

const (
	compareItemLimit = 5
	compareScanLimit = 500
)

// DefaultCompareKeywords select the items considered alternatives for each
// stack category.
var DefaultCompareKeywords = map[string][]string{
	"terminal":     {"terminal", "shell", "ghostty", "warp", "iterm", "kitty"},
	"harness":      {"claude code", "cursor", "aider", "windsurf", "cline", "copilot"},
	"orchestrator": {"mcp", "orchestrat", "agent", "omc", "roo", "continue"},
}

// StackComparison is the outcome of comparing one stack category.
type StackComparison struct {
	Category    string         `json:"category"`
	CurrentTool string         `json:"current_tool"`
	Comparisons []Comparison   `json:"comparisons"`
	Report      domain.Report  `json:"report"`
	Action      *domain.Action `json:"action,omitempty"`
}

func compareKeywords(custom map[string][]string) map[string][]string {
	out := make(map[string][]string, len(DefaultCompareKeywords)+len(custom))
	for k, v := range DefaultCompareKeywords {
		out[k] = v
	}
	for k, v := range custom {
		terms := make([]string, 0, len(v))
		for _, term := range v {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
				terms = append(terms, term)
			}
		}
		out[strings.ToLower(k)] = terms
	}
	return out
}

// CompareStack judges recently collected items mentioning a stack category
// against the tool currently used for it and stores a comparison report.
// Up to five of the newest matching items are compared.
func (p *Pipeline) CompareStack(ctx context.Context, topicID, category string) (StackComparison, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	currentTool, ok := p.processor.opts.CurrentStack[category]
	if !ok {
		return StackComparison{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if p.analyzer == nil {
		return StackComparison{}, fmt.Errorf("%w: analyzer is not configured", domain.ErrMisconfigured)
	}
	topicID, err := p.processor.ResolveTopicID(ctx, topicID)
	if err != nil {
		return StackComparison{}, err
	}
	if topicID == "" {
		return StackComparison{}, fmt.Errorf("default topic: %w", domain.ErrNotFound)
	}

	items, err := p.items.ListCollectedSince(ctx, time.Time{}, compareScanLimit)
	if err != nil {
		return StackComparison{}, fmt.Errorf("list items: %w", err)
	}
	terms := p.keywords[category]
	if len(terms) == 0 {
		terms = []string{category, strings.ToLower(currentTool)}
	}
	matched := matchItems(items, terms, compareItemLimit)

	active, err := p.principles.ListActivePrinciples(ctx, principleLimit)
	if err != nil {
		return StackComparison{}, fmt.Errorf("list principles: %w", err)
	}
	principles := principleContents(active)

	comparisons := make([]Comparison, 0, len(matched))
	for _, item := range matched {
		c := Comparison{ItemID: item.ID, Item: item.Title, URL: item.URL}
		raw, err := p.analyzer.Analyze(ctx, BuildComparePrompt(item, currentTool, principles), p.maxTokens)
		if err != nil {
			p.logger.Warn("comparison failed", "item_id", item.ID, "category", category, "error", err)
			c.Analysis = domain.Analysis{"error": err.Error(), "parse_error": true}
		} else {
			c.Analysis = domain.ParseAnalysis(raw)
		}
		comparisons = append(comparisons, c)
	}

	report, action, err := p.reporter.ComparisonReport(ctx, topicID, category, currentTool, comparisons)
	if err != nil {
		return StackComparison{}, err
	}
	p.logger.Info("stack comparison stored",
		"category", category,
		"current_tool", currentTool,
		"compared", len(comparisons),
		"switch_suggested", action != nil)
	return StackComparison{
		Category:    category,
		CurrentTool: currentTool,
		Comparisons: comparisons,
		Report:      report,
		Action:      action,
	}, nil
}

// matchItems keeps items whose title or content contains any term, in the
// given order, up to limit.
func matchItems(items []domain.CollectedItem, terms []string, limit int) []domain.CollectedItem {
	var out []domain.CollectedItem
	for _, item := range items {
		if len(out) == limit {
			break
		}
		title := strings.ToLower(item.Title)
		content := strings.ToLower(item.Content)
		for _, term := range terms {
			if strings.Contains(title, term) || strings.Contains(content, term) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
