package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/metrics"
	"ContentCurator/internal/ports"
)

const (
	// DefaultProcessBatch is how many unprocessed items one pass analyzes.
	DefaultProcessBatch = 50
	// DefaultMaxTokens is the completion budget per analyzer call.
	DefaultMaxTokens = 4000
	// DefaultTopicName is used when a run is not scoped to a topic.
	DefaultTopicName = "vibecoding"

	principleLimit = 10
)

// DefaultStack is the tool set new items are compared against.
var DefaultStack = map[string]string{
	"terminal":     "Ghostty",
	"harness":      "Claude Code",
	"orchestrator": "OMC (oh-my-claudecode)",
}

// ProcessorOptions tunes the analysis pass.
type ProcessorOptions struct {
	Batch        int
	Concurrency  int
	MaxTokens    int
	DefaultTopic string
	CurrentStack map[string]string
}

// Processor sends unprocessed items to the analyzer.
type Processor struct {
	topics     ports.TopicRepository
	sources    ports.SourceRepository
	items      ports.ItemRepository
	principles ports.PrincipleRepository
	analyzer   ports.Analyzer
	opts       ProcessorOptions
	now        func() time.Time
	logger     *slog.Logger
}

// NewProcessor fills unset options with defaults.
func NewProcessor(topics ports.TopicRepository, sources ports.SourceRepository, items ports.ItemRepository, principles ports.PrincipleRepository, analyzer ports.Analyzer, opts ProcessorOptions, log *slog.Logger) *Processor {
	if opts.Batch <= 0 {
		opts.Batch = DefaultProcessBatch
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.DefaultTopic == "" {
		opts.DefaultTopic = DefaultTopicName
	}
	if len(opts.CurrentStack) == 0 {
		opts.CurrentStack = DefaultStack
	}
	return &Processor{
		topics:     topics,
		sources:    sources,
		items:      items,
		principles: principles,
		analyzer:   analyzer,
		opts:       opts,
		now:        time.Now,
		logger:     log,
	}
}

// ResolveTopicID returns topicID, or the id of the default topic when empty.
// An unknown default topic yields "" without error.
func (p *Processor) ResolveTopicID(ctx context.Context, topicID string) (string, error) {
	if topicID != "" {
		return topicID, nil
	}
	topic, err := p.topics.GetTopicByName(ctx, p.opts.DefaultTopic)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve default topic %q: %w", p.opts.DefaultTopic, err)
	}
	return topic.ID, nil
}

// ProcessNew analyzes one batch of unprocessed items under the topic. Every
// item is marked processed right after its analyzer call, whatever the outcome.
func (p *Processor) ProcessNew(ctx context.Context, topicID string) ([]domain.ItemAnalysis, error) {
	if p.analyzer == nil {
		return nil, fmt.Errorf("%w: analyzer is not configured", domain.ErrMisconfigured)
	}

	topicID, err := p.ResolveTopicID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topicID == "" {
		p.debug("no topic to process", "default_topic", p.opts.DefaultTopic)
		return nil, nil
	}

	sourceIDs, err := p.sources.ListSourceIDsByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("list topic sources: %w", err)
	}
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	items, err := p.items.ListUnprocessed(ctx, sourceIDs, p.opts.Batch)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	active, err := p.principles.ListActivePrinciples(ctx, principleLimit)
	if err != nil {
		return nil, fmt.Errorf("list principles: %w", err)
	}
	principles := principleContents(active)

	results := make([]domain.ItemAnalysis, len(items))
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i] = p.processItem(ctx, item, principles)
			return nil
		})
	}
	_ = g.Wait()

	p.debug("items analyzed", "topic_id", topicID, "count", len(results))
	return results, nil
}

func (p *Processor) processItem(ctx context.Context, item domain.CollectedItem, principles []string) (res domain.ItemAnalysis) {
	res = domain.ItemAnalysis{ItemID: item.ID, ItemTitle: item.Title, ItemURL: item.URL}

	defer func() {
		if r := recover(); r != nil {
			res.Analysis = domain.Analysis{"error": fmt.Sprintf("analyzer panic: %v", r), "parse_error": true}
		}
		if err := p.items.MarkProcessed(ctx, item.ID, p.now().UTC()); err != nil {
			p.warn("mark processed failed", "item_id", item.ID, "error", err)
		}
		metrics.RecordAnalysis(res.Analysis.Degraded())
	}()

	prompt := BuildToolPrompt(item, principles, p.opts.CurrentStack)
	raw, err := p.analyzer.Analyze(ctx, prompt, p.opts.MaxTokens)
	if err != nil {
		p.warn("analysis failed", "item_id", item.ID, "error", err)
		res.Analysis = domain.Analysis{"error": err.Error(), "parse_error": true}
		return res
	}
	res.Analysis = domain.ParseAnalysis(raw)
	return res
}

func (p *Processor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Processor) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
