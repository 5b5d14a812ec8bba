package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/infrastructure/archive"
	"ContentCurator/internal/infrastructure/collectors"
	"ContentCurator/internal/infrastructure/httpapi"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/notify"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/storage"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/quality"
	"ContentCurator/internal/usecase"
)

const defaultConfidence = 0.5

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	store     *storage.Store
	pipeline  *usecase.Pipeline
	learner   *usecase.Learner
	actions   *usecase.ActionService
	scheduler *usecase.Scheduler
	api       *httpapi.Server
	logger    *slog.Logger
}

// New opens storage, seeds configured topics and principles, and builds
// every use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store.WithLogger(baseLogger.With("component", "storage"))

	a := &Application{cfg: cfg, store: store, logger: baseLogger}
	if err := a.seed(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	registry := collector.NewRegistry()
	collectors.Register(registry, collectors.Settings{
		Timeout:     cfg.Collector.Timeout,
		GitHubAPI:   cfg.Collector.GitHubAPI,
		GitHubToken: cfg.Collector.GitHubToken,
		SocialAPI:   cfg.Collector.SocialAPI,
		RapidAPIKey: cfg.Collector.RapidAPIKey,
		Logger:      baseLogger.With("component", "adapter"),
	})

	var analyzer ports.Analyzer
	if cfg.LLM.APIKey != "" {
		analyzer = llm.NewClient(cfg.LLM)
	} else {
		baseLogger.Warn("llm api key missing, analysis disabled")
	}

	var archiver ports.RunArchiver
	if cfg.Archive.Enabled() {
		client, err := archive.NewS3Client(ctx, cfg.Archive)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("archive client: %w", err)
		}
		archiver = archive.NewS3Archiver(client, cfg.Archive.Bucket, cfg.Archive.Prefix)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Topics:     store,
		Sources:    store,
		Items:      store,
		Principles: store,
		Reports:    store,
		Actions:    store,
		Analyzer:   analyzer,
		Notifier:   notify.New(cfg.Notifications, baseLogger.With("component", "notify")),
		Archiver:   archiver,
		Registry:   registry,
		Scorer:     quality.NewScorer(),
		Logger:     baseLogger,
	}, usecase.PipelineOptions{
		QualityThreshold:    cfg.Pipeline.QualityThreshold,
		QualityBatch:        cfg.Pipeline.QualityBatch,
		ProcessBatch:        cfg.Pipeline.ProcessBatch,
		CollectConcurrency:  cfg.Collector.Concurrency,
		AnalysisConcurrency: cfg.Pipeline.AnalysisConcurrency,
		MaxTokens:           cfg.Pipeline.MaxTokens,
		DefaultTopic:        cfg.Pipeline.DefaultTopic,
		CurrentStack:        cfg.Pipeline.CurrentStack,
		CompareKeywords:     cfg.Pipeline.CompareKeywords,
	})
	a.learner = usecase.NewLearner(store, store)
	a.actions = usecase.NewActionService(store, store)
	a.scheduler = usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.Location(), baseLogger.With("component", "cron")),
		a.pipeline,
		usecase.ScheduleSpec{
			Collect:  cfg.Scheduler.CollectCron,
			Pipeline: cfg.Scheduler.PipelineCron,
			Weekly:   cfg.Scheduler.WeeklyCron,
		},
		baseLogger.With("component", "scheduler"),
	)
	a.api = httpapi.New(httpapi.Deps{
		Pipeline: a.pipeline,
		Learner:  a.learner,
		Actions:  a.actions,
		Logger:   baseLogger.With("component", "http"),
	})
	return a, nil
}

// Close releases the database.
func (a *Application) Close() error {
	return a.store.Close()
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, topicID string) domain.RunResult {
	return a.pipeline.Run(ctx, usecase.RunOptions{TopicID: topicID})
}

// WeeklySummary stores a trend report for the topic.
func (a *Application) WeeklySummary(ctx context.Context, topicID string) (usecase.WeeklySummary, error) {
	return a.pipeline.WeeklySummary(ctx, topicID)
}

// CompareStack compares recent items against the current tool of a category.
func (a *Application) CompareStack(ctx context.Context, topicID, category string) (usecase.StackComparison, error) {
	return a.pipeline.CompareStack(ctx, topicID, category)
}

// Reprocess queues analyzed items for another pass.
func (a *Application) Reprocess(ctx context.Context, topicID string) (int, error) {
	return a.pipeline.Reprocess(ctx, topicID)
}

// Serve runs the cron jobs and the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.api.ListenAndServe(ctx, a.cfg.HTTP.Addr, a.cfg.HTTP.ShutdownTimeout)
	})
	g.Go(func() error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return a.scheduler.Stop(stopCtx)
	})
	return g.Wait()
}

func (a *Application) seed(ctx context.Context) error {
	for _, tc := range a.cfg.Topics {
		if strings.TrimSpace(tc.Name) == "" {
			continue
		}
		topic, err := a.store.GetTopicByName(ctx, tc.Name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			topic = domain.Topic{Name: tc.Name, Active: true}
		case err != nil:
			return fmt.Errorf("seed topic %s: %w", tc.Name, err)
		}
		topic.Keywords = tc.Keywords
		if topic, err = a.store.SaveTopic(ctx, topic); err != nil {
			return fmt.Errorf("seed topic %s: %w", tc.Name, err)
		}

		for _, sc := range tc.Sources {
			id := sc.ID
			if id == "" {
				id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(tc.Name+"|"+sc.Kind+"|"+sc.Locator)).String()
			}
			_, err := a.store.SaveSource(ctx, domain.Source{
				ID:      id,
				TopicID: topic.ID,
				Kind:    domain.SourceKind(strings.ToLower(sc.Kind)),
				Locator: sc.Locator,
				Config:  sc.Config,
				Active:  !sc.Disabled,
			})
			if err != nil {
				return fmt.Errorf("seed source %s: %w", sc.Locator, err)
			}
		}
	}

	for _, pc := range a.cfg.Principles {
		if strings.TrimSpace(pc.Content) == "" {
			continue
		}
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(pc.Content)).String()
		if _, err := a.store.GetPrinciple(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("seed principle: %w", err)
		}

		confidence := pc.Confidence
		if confidence <= 0 {
			confidence = defaultConfidence
		}
		_, err := a.store.SavePrinciple(ctx, domain.Principle{
			ID:         id,
			Content:    pc.Content,
			Category:   pc.Category,
			Confidence: confidence,
			Active:     true,
		})
		if err != nil {
			return fmt.Errorf("seed principle: %w", err)
		}
	}
	return nil
}
