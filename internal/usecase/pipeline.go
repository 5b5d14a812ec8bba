package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/metrics"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/quality"
)

const (
	weeklyWindow    = 7 * 24 * time.Hour
	weeklyItemLimit = 100
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Topics     ports.TopicRepository
	Sources    ports.SourceRepository
	Items      ports.ItemRepository
	Principles ports.PrincipleRepository
	Reports    ports.ReportRepository
	Actions    ports.ActionRepository
	Analyzer   ports.Analyzer
	Notifier   ports.Notifier
	Archiver   ports.RunArchiver
	Registry   *collector.Registry
	Scorer     *quality.Scorer
	Logger     *slog.Logger
}

// PipelineOptions carries tunables; zero values select defaults.
type PipelineOptions struct {
	QualityThreshold    float64
	QualityBatch        int
	ProcessBatch        int
	CollectConcurrency  int
	AnalysisConcurrency int
	MaxTokens           int
	DefaultTopic        string
	CurrentStack        map[string]string
	CompareKeywords     map[string][]string
}

// RunOptions scopes a single run.
type RunOptions struct {
	TopicID string
}

// WeeklySummary is the outcome of a trend summary request.
type WeeklySummary struct {
	Summary domain.Analysis `json:"summary"`
	Report  domain.Report   `json:"report"`
	Actions []domain.Action `json:"actions"`
}

// Pipeline runs collect, quality_filter, process, reports and notify in order.
type Pipeline struct {
	manager    *CollectorManager
	filter     *QualityFilter
	processor  *Processor
	reporter   *ReportGenerator
	items      ports.ItemRepository
	sources    ports.SourceRepository
	principles ports.PrincipleRepository
	actions    ports.ActionRepository
	analyzer   ports.Analyzer
	notifier   ports.Notifier
	archiver   ports.RunArchiver
	maxTokens  int
	keywords   map[string][]string
	now        func() time.Time
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, opts PipelineOptions) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	processor := NewProcessor(deps.Topics, deps.Sources, deps.Items, deps.Principles, deps.Analyzer, ProcessorOptions{
		Batch:        opts.ProcessBatch,
		Concurrency:  opts.AnalysisConcurrency,
		MaxTokens:    opts.MaxTokens,
		DefaultTopic: opts.DefaultTopic,
		CurrentStack: opts.CurrentStack,
	}, log.With("component", "processor"))

	return &Pipeline{
		manager:    NewCollectorManager(deps.Sources, deps.Items, deps.Registry, opts.CollectConcurrency, log.With("component", "collector")),
		filter:     NewQualityFilter(deps.Items, deps.Sources, deps.Topics, deps.Scorer, opts.QualityThreshold, opts.QualityBatch, log.With("component", "quality")),
		processor:  processor,
		reporter:   NewReportGenerator(deps.Reports, deps.Actions),
		items:      deps.Items,
		sources:    deps.Sources,
		principles: deps.Principles,
		actions:    deps.Actions,
		analyzer:   deps.Analyzer,
		notifier:   deps.Notifier,
		archiver:   deps.Archiver,
		maxTokens:  processor.opts.MaxTokens,
		keywords:   compareKeywords(opts.CompareKeywords),
		now:        time.Now,
		logger:     log.With("component", "pipeline"),
	}
}

// Collect runs only the collection step.
func (p *Pipeline) Collect(ctx context.Context, topicID string) ([]domain.SourceOutcome, error) {
	return p.manager.CollectAll(ctx, topicID)
}

// Run executes every stage once. It never fails as a whole: stage errors and
// panics are captured in the result.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) domain.RunResult {
	result := domain.RunResult{
		RunID:     uuid.NewString(),
		TopicID:   opts.TopicID,
		StartedAt: p.now().UTC(),
		Stages:    map[string]domain.StageResult{},
		Errors:    []string{},
	}
	log := p.logger.With("run_id", result.RunID)
	log.Info("pipeline run started", "topic_id", opts.TopicID)

	p.runStage(ctx, &result, domain.StageCollect, func(ctx context.Context) (domain.StageResult, error) {
		outcomes, err := p.manager.CollectAll(ctx, opts.TopicID)
		if err != nil {
			return domain.StageResult{}, err
		}
		sr := domain.StageResult{Sources: outcomes, Counts: map[string]int{"sources": len(outcomes)}}
		for _, o := range outcomes {
			sr.Counts["collected"] += o.Collected
			sr.Counts["saved"] += o.Saved
			if o.Failed() {
				sr.Counts["failed"]++
				result.Errors = append(result.Errors, fmt.Sprintf("collect: source %s: %s", o.SourceID, o.Error))
			}
		}
		if n := sr.Counts["failed"]; n > 0 {
			sr.Error = fmt.Sprintf("%d of %d sources failed", n, len(outcomes))
		}
		return sr, nil
	})

	p.runStage(ctx, &result, domain.StageQualityFilter, func(ctx context.Context) (domain.StageResult, error) {
		res, err := p.filter.Filter(ctx, opts.TopicID)
		if err != nil {
			return domain.StageResult{}, err
		}
		return domain.StageResult{Counts: map[string]int{
			"total_items":  res.Total,
			"passed_items": len(res.Passed),
			"filtered_out": res.FilteredOut,
		}}, nil
	})

	var analyses []domain.ItemAnalysis
	p.runStage(ctx, &result, domain.StageProcess, func(ctx context.Context) (domain.StageResult, error) {
		var err error
		analyses, err = p.processor.ProcessNew(ctx, opts.TopicID)
		if err != nil {
			return domain.StageResult{}, err
		}
		degraded := 0
		for _, a := range analyses {
			if a.Analysis.Degraded() {
				degraded++
			}
		}
		return domain.StageResult{Counts: map[string]int{"processed_count": len(analyses), "degraded": degraded}}, nil
	})

	p.runStage(ctx, &result, domain.StageReports, func(ctx context.Context) (domain.StageResult, error) {
		created, err := p.generateReports(ctx, opts.TopicID, analyses)
		return domain.StageResult{Counts: map[string]int{"reports_created": created}}, err
	})

	p.runStage(ctx, &result, domain.StageNotify, p.notifyPending)

	result.CompletedAt = p.now().UTC()
	result.Success = len(result.Errors) == 0
	metrics.RecordRun(result.Success)

	if p.archiver != nil {
		if err := p.archiver.ArchiveRun(ctx, result); err != nil {
			log.Warn("archive run failed", "error", err)
		}
	}

	log.Info("pipeline run finished",
		"success", result.Success,
		"errors", len(result.Errors),
		"duration", result.CompletedAt.Sub(result.StartedAt))
	return result
}

func (p *Pipeline) runStage(ctx context.Context, result *domain.RunResult, name string, fn func(context.Context) (domain.StageResult, error)) {
	start := time.Now()
	sr, err := safeStage(ctx, fn)
	sr.Duration = time.Since(start)
	// A stage may report partial failure through sr.Error without an error
	// return; its detailed errors are then already on the result.
	sr.Success = err == nil && sr.Error == ""
	if err != nil {
		sr.Error = err.Error()
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", name, err))
		p.logger.Error("stage failed", "run_id", result.RunID, "stage", name, "error", err)
	}
	metrics.RecordStage(name, sr.Duration.Seconds(), sr.Success)
	result.Stages[name] = sr
}

func safeStage(ctx context.Context, fn func(context.Context) (domain.StageResult, error)) (sr domain.StageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (p *Pipeline) generateReports(ctx context.Context, topicID string, analyses []domain.ItemAnalysis) (int, error) {
	if len(analyses) == 0 {
		return 0, nil
	}
	topicID, err := p.processor.ResolveTopicID(ctx, topicID)
	if err != nil {
		return 0, err
	}
	if topicID == "" {
		return 0, nil
	}

	created := 0
	var errs []error
	for _, ia := range analyses {
		if !ia.Analysis.Actionable() {
			continue
		}
		if _, err := p.reporter.NewToolReport(ctx, topicID, ia); err != nil {
			errs = append(errs, err)
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

func (p *Pipeline) notifyPending(ctx context.Context) (domain.StageResult, error) {
	pending, err := p.actions.ListPendingActions(ctx)
	if err != nil {
		return domain.StageResult{}, fmt.Errorf("list pending actions: %w", err)
	}

	sr := domain.StageResult{Counts: map[string]int{"pending": len(pending), "notifications_sent": 0, "failed": 0}}
	if p.notifier == nil {
		return sr, nil
	}
	for _, action := range pending {
		res := p.notifier.Send(ctx, action)
		metrics.RecordNotification(res.Success)
		if res.Success {
			sr.Counts["notifications_sent"]++
			continue
		}
		sr.Counts["failed"]++
		sr.Messages = append(sr.Messages, fmt.Sprintf("action %s: %s", action.ID, res.Error))
	}
	return sr, nil
}

// Reprocess clears processed_at on processed, non-filtered items so the next
// run analyzes them again. A topicID limits the reset to that topic's sources.
func (p *Pipeline) Reprocess(ctx context.Context, topicID string) (int, error) {
	var sourceIDs []string
	if topicID != "" {
		ids, err := p.sources.ListSourceIDsByTopic(ctx, topicID)
		if err != nil {
			return 0, fmt.Errorf("list topic sources: %w", err)
		}
		if len(ids) == 0 {
			return 0, nil
		}
		sourceIDs = ids
	}

	n, err := p.items.ResetProcessed(ctx, sourceIDs)
	if err != nil {
		return 0, fmt.Errorf("reset processed: %w", err)
	}
	p.logger.Info("items queued for reprocessing", "topic_id", topicID, "count", n)
	return n, nil
}

// WeeklySummary asks the analyzer for a trend summary of the last seven days
// of collected items and stores it as a best_practice report.
func (p *Pipeline) WeeklySummary(ctx context.Context, topicID string) (WeeklySummary, error) {
	if p.analyzer == nil {
		return WeeklySummary{}, fmt.Errorf("%w: analyzer is not configured", domain.ErrMisconfigured)
	}
	topicID, err := p.processor.ResolveTopicID(ctx, topicID)
	if err != nil {
		return WeeklySummary{}, err
	}
	if topicID == "" {
		return WeeklySummary{}, fmt.Errorf("default topic: %w", domain.ErrNotFound)
	}

	items, err := p.items.ListCollectedSince(ctx, p.now().Add(-weeklyWindow), weeklyItemLimit)
	if err != nil {
		return WeeklySummary{}, fmt.Errorf("list recent items: %w", err)
	}
	active, err := p.principles.ListActivePrinciples(ctx, principleLimit)
	if err != nil {
		return WeeklySummary{}, fmt.Errorf("list principles: %w", err)
	}

	raw, err := p.analyzer.Analyze(ctx, BuildTrendPrompt(items, principleContents(active), "this week"), p.maxTokens)
	if err != nil {
		return WeeklySummary{}, fmt.Errorf("summarize trends: %w", err)
	}
	summary := domain.ParseAnalysis(raw)

	report, actions, err := p.reporter.WeeklyReport(ctx, topicID, summary)
	if err != nil {
		return WeeklySummary{}, err
	}
	p.logger.Info("weekly summary stored", "topic_id", topicID, "items", len(items), "actions", len(actions))
	return WeeklySummary{Summary: summary, Report: report, Actions: actions}, nil
}
