package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ContentCurator/internal/domain"
)

const (
	trendItemLimit    = 20
	trendContentRunes = 500
)

// BuildToolPrompt asks the analyzer to judge one item against the user's
// principles and current stack.
func BuildToolPrompt(item domain.CollectedItem, principles []string, stack map[string]string) string {
	meta := item.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	info := map[string]any{
		"title":    item.Title,
		"content":  item.Content,
		"url":      item.URL,
		"metadata": meta,
	}

	var b strings.Builder
	b.WriteString("Analyze this new AI coding tool/feature:\n\nTOOL INFO:\n")
	b.WriteString(indentJSON(info))
	b.WriteString("\n\nUSER'S PRINCIPLES:\n")
	b.WriteString(bulletList(principles))
	b.WriteString("\n\nCURRENT STACK:\n")
	b.WriteString(indentJSON(stack))
	b.WriteString(`

Analyze:
1. How does this align with user's principles? (principle_alignment)
2. Does it improve on current stack? (stack_comparison)
3. Recommendation (recommend/consider/skip)
4. Key benefits and drawbacks

Output as JSON:
{
  "recommendation": "recommend|consider|skip",
  "principle_alignment": {"aligned": ["principles..."], "conflicting": ["principles..."]},
  "stack_comparison": {"replaces": "tool_name or null", "complements": ["tools..."], "improvement_areas": ["areas..."]},
  "benefits": ["benefit1", "benefit2"],
  "drawbacks": ["drawback1"],
  "summary": "2-3 sentence summary"
}`)
	return b.String()
}

// BuildTrendPrompt asks for a summary of recent items. Only the first twenty
// items are included and each body is cut to 500 characters.
func BuildTrendPrompt(items []domain.CollectedItem, principles []string, period string) string {
	if len(items) > trendItemLimit {
		items = items[:trendItemLimit]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", title, truncate(item.Content, trendContentRunes)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the key AI coding trends and best practices from %s:\n\nCOLLECTED ITEMS:\n", period)
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString("\n\nUSER'S PRINCIPLES:\n")
	b.WriteString(bulletList(principles))
	b.WriteString(`

Provide a summary that:
1. Highlights relevant trends
2. Notes practices aligned with user's principles
3. Flags anything conflicting with principles

Output as JSON:
{
  "key_trends": ["trend1", "trend2"],
  "best_practices": ["practice1", "practice2"],
  "principle_aligned": ["items that align with principles"],
  "principle_conflicts": ["items that conflict"],
  "action_items": ["suggested actions"],
  "summary": "Executive summary (3-5 sentences)"
}`)
	return b.String()
}

// BuildComparePrompt asks whether a collected item should replace the tool
// currently used for a stack category.
func BuildComparePrompt(item domain.CollectedItem, currentTool string, principles []string) string {
	info := map[string]any{
		"title":   item.Title,
		"content": item.Content,
		"url":     item.URL,
	}

	var b strings.Builder
	b.WriteString("Compare this tool with the user's current tool:\n\nNEW TOOL:\n")
	b.WriteString(indentJSON(info))
	fmt.Fprintf(&b, "\n\nCURRENT TOOL: %s\n\nUSER'S PRINCIPLES:\n", currentTool)
	b.WriteString(bulletList(principles))
	b.WriteString(`

Analyze whether the new tool might be better than the current one.
Consider the user's principles in your analysis.

Output as JSON:
{
  "should_switch": true|false,
  "confidence": 0.0-1.0,
  "advantages_of_new": ["adv1", "adv2"],
  "advantages_of_current": ["adv1", "adv2"],
  "principle_based_reasoning": "reasoning based on principles",
  "migration_effort": "low|medium|high",
  "summary": "recommendation summary"
}`)
	return b.String()
}

func bulletList(values []string) string {
	lines := make([]string, 0, len(values))
	for _, v := range values {
		lines = append(lines, "- "+v)
	}
	return strings.Join(lines, "\n")
}

func indentJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func principleContents(principles []domain.Principle) []string {
	out := make([]string, 0, len(principles))
	for _, p := range principles {
		out = append(out, p.Content)
	}
	return out
}
