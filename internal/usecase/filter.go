package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/metrics"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/quality"
)

// DefaultQualityBatch is how many unscored items one pass scores.
const DefaultQualityBatch = 200

// FilterResult summarizes one quality pass.
type FilterResult struct {
	Total       int
	Passed      []domain.CollectedItem
	FilteredOut int
}

// QualityFilter scores newly collected items and records the decision.
type QualityFilter struct {
	items     ports.ItemRepository
	sources   ports.SourceRepository
	topics    ports.TopicRepository
	scorer    *quality.Scorer
	threshold float64
	batch     int
	logger    *slog.Logger
}

// NewQualityFilter builds the filter; zero values select the defaults.
func NewQualityFilter(items ports.ItemRepository, sources ports.SourceRepository, topics ports.TopicRepository, scorer *quality.Scorer, threshold float64, batch int, log *slog.Logger) *QualityFilter {
	if scorer == nil {
		scorer = quality.NewScorer()
	}
	if batch <= 0 {
		batch = DefaultQualityBatch
	}
	return &QualityFilter{
		items:     items,
		sources:   sources,
		topics:    topics,
		scorer:    scorer,
		threshold: threshold,
		batch:     batch,
		logger:    log,
	}
}

// Filter scores up to one batch of unscored items, newest first.
func (f *QualityFilter) Filter(ctx context.Context, topicID string) (FilterResult, error) {
	items, err := f.items.ListUnscored(ctx, f.batch)
	if err != nil {
		return FilterResult{}, fmt.Errorf("list unscored items: %w", err)
	}
	if len(items) == 0 {
		return FilterResult{}, nil
	}

	sources, err := f.loadSources(ctx, items)
	if err != nil {
		return FilterResult{}, err
	}

	topic, err := f.loadTopic(ctx, topicID)
	if err != nil {
		return FilterResult{}, err
	}

	res := FilterResult{Total: len(items)}
	for _, item := range items {
		// Items of a deleted source are scored with kind defaults.
		src := sources[item.SourceID]
		scored := f.scorer.Score(item, src, topic, f.threshold)

		if err := f.items.UpdateQuality(ctx, item.ID, scored); err != nil {
			f.warn("persist quality failed", "item_id", item.ID, "error", err)
			continue
		}

		if scored.ShouldProcess {
			item.QualityScore = &scored.Score
			item.QualityBreakdown = scored.Breakdown
			res.Passed = append(res.Passed, item)
			metrics.ItemsScored.WithLabelValues("passed").Inc()
		} else {
			res.FilteredOut++
			metrics.ItemsScored.WithLabelValues("filtered").Inc()
		}
	}

	f.info("quality filter done", "total", res.Total, "passed", len(res.Passed), "filtered_out", res.FilteredOut)
	return res, nil
}

func (f *QualityFilter) loadSources(ctx context.Context, items []domain.CollectedItem) (map[string]domain.Source, error) {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.SourceID == "" {
			continue
		}
		if _, ok := seen[item.SourceID]; ok {
			continue
		}
		seen[item.SourceID] = struct{}{}
		ids = append(ids, item.SourceID)
	}

	out := make(map[string]domain.Source, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sources, err := f.sources.ListSourcesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	for _, src := range sources {
		out[src.ID] = src
	}
	return out, nil
}

func (f *QualityFilter) loadTopic(ctx context.Context, topicID string) (*domain.Topic, error) {
	if topicID == "" || f.topics == nil {
		return nil, nil
	}
	topic, err := f.topics.GetTopic(ctx, topicID)
	if errors.Is(err, domain.ErrNotFound) {
		f.warn("topic not found, scoring without topic keywords", "topic_id", topicID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load topic %s: %w", topicID, err)
	}
	return &topic, nil
}

func (f *QualityFilter) info(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f *QualityFilter) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
