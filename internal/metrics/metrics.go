// Package metrics provides Prometheus metrics for the curation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsCollected counts items returned by adapters per source kind.
	ItemsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "collector",
			Name:      "items_collected_total",
			Help:      "Total number of items returned by source adapters",
		},
		[]string{"kind"},
	)

	// ItemsSaved counts items successfully upserted per source kind.
	ItemsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "collector",
			Name:      "items_saved_total",
			Help:      "Total number of collected items persisted",
		},
		[]string{"kind"},
	)

	// SourceFailures counts sources whose collection failed.
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "collector",
			Name:      "source_failures_total",
			Help:      "Total number of failed source collections",
		},
		[]string{"kind"},
	)

	// ItemsScored counts quality decisions.
	ItemsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "quality",
			Name:      "items_scored_total",
			Help:      "Total number of scored items by decision",
		},
		[]string{"decision"},
	)

	// AnalysesTotal counts analyzer calls by outcome.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "processor",
			Name:      "analyses_total",
			Help:      "Total number of item analyses by outcome",
		},
		[]string{"outcome"},
	)

	// RunsTotal counts pipeline runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration tracks stage duration in seconds.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	// StageErrors counts failed stages.
	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Total number of failed pipeline stages",
		},
		[]string{"stage"},
	)

	// NotificationsTotal counts notifier deliveries by outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total number of action notifications by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordCollection records what one source produced.
func RecordCollection(kind string, collected, saved int, failed bool) {
	ItemsCollected.WithLabelValues(kind).Add(float64(collected))
	ItemsSaved.WithLabelValues(kind).Add(float64(saved))
	if failed {
		SourceFailures.WithLabelValues(kind).Inc()
	}
}

// RecordStage records a stage duration and, when it failed, an error.
func RecordStage(stage string, durationSeconds float64, success bool) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
	if !success {
		StageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordRun records a finished pipeline run.
func RecordRun(success bool) {
	RunsTotal.WithLabelValues(outcome(success)).Inc()
}

// RecordAnalysis records one analyzer call.
func RecordAnalysis(degraded bool) {
	if degraded {
		AnalysesTotal.WithLabelValues("degraded").Inc()
		return
	}
	AnalysesTotal.WithLabelValues("ok").Inc()
}

// RecordNotification records one notifier delivery.
func RecordNotification(success bool) {
	NotificationsTotal.WithLabelValues(outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
