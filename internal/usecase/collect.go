package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/metrics"
	"ContentCurator/internal/ports"
)

// DefaultCollectConcurrency bounds how many sources are fetched at once.
const DefaultCollectConcurrency = 4

// CollectorManager runs every active source through its adapter and persists
// the results. One failing source never stops the others.
type CollectorManager struct {
	sources     ports.SourceRepository
	items       ports.ItemRepository
	registry    *collector.Registry
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// NewCollectorManager wires repositories with the adapter registry.
func NewCollectorManager(sources ports.SourceRepository, items ports.ItemRepository, reg *collector.Registry, concurrency int, log *slog.Logger) *CollectorManager {
	if concurrency <= 0 {
		concurrency = DefaultCollectConcurrency
	}
	return &CollectorManager{
		sources:     sources,
		items:       items,
		registry:    reg,
		concurrency: concurrency,
		now:         time.Now,
		logger:      log,
	}
}

// CollectAll collects every active source, optionally limited to one topic.
// Outcomes are returned in source order. The error is set only when the
// source list itself cannot be loaded.
func (m *CollectorManager) CollectAll(ctx context.Context, topicID string) ([]domain.SourceOutcome, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("%w: collector registry is not configured", domain.ErrMisconfigured)
	}

	sources, err := m.sources.ListActiveSources(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	m.debug("collect all", "sources", len(sources), "topic_id", topicID)

	outcomes := make([]domain.SourceOutcome, len(sources))
	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = m.collectSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, nil
}

func (m *CollectorManager) collectSource(ctx context.Context, src domain.Source) (out domain.SourceOutcome) {
	out = domain.SourceOutcome{SourceID: src.ID, Kind: string(src.Kind)}

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("adapter panic: %v", r)
		}
		if err := m.sources.TouchCollected(ctx, src.ID, m.now().UTC()); err != nil {
			m.warn("touch source failed", "source_id", src.ID, "error", err)
		}
		if out.Err != nil {
			out.Error = out.Err.Error()
			m.warn("source collection failed", "source_id", src.ID, "kind", src.Kind, "error", out.Err)
		}
		metrics.RecordCollection(out.Kind, out.Collected, out.Saved, out.Failed())
	}()

	if src.ConfigErr != nil {
		out.Err = src.ConfigErr
		return out
	}

	adapter, err := m.registry.Build(src)
	if err != nil {
		out.Err = err
		return out
	}

	items, err := adapter.Collect(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	out.Collected = len(items)

	collectedAt := m.now().UTC()
	for _, item := range items {
		item.SourceID = src.ID
		if item.CollectedAt.IsZero() {
			item.CollectedAt = collectedAt
		}
		if err := m.items.UpsertItem(ctx, item); err != nil {
			m.warn("save item failed", "source_id", src.ID, "external_id", item.ExternalID, "error", err)
			continue
		}
		out.Saved++
	}

	m.debug("source collected", "source_id", src.ID, "kind", src.Kind, "collected", out.Collected, "saved", out.Saved)
	return out
}

func (m *CollectorManager) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *CollectorManager) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
