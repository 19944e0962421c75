package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

// BatchMetrics collects one run's measurements and, when a textfile path is set,
// writes them in the node-exporter textfile format at the end of the batch.
type BatchMetrics struct {
	registry *prometheus.Registry
	textfile string

	itemsTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	batchInputs   prometheus.Gauge
	batchSkipped  prometheus.Gauge
	lastRun       prometheus.Gauge
}

func NewBatchMetrics(service, textfile string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	itemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "intake",
			Subsystem:   "batch",
			Name:        "items_total",
			Help:        "Inputs by terminal state and quarantine reason.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"state", "reason"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "intake",
			Subsystem:   "batch",
			Name:        "stage_duration_seconds",
			Help:        "External call duration by pipeline stage and status.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"stage", "status"},
	)
	batchInputs := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "intake",
		Subsystem:   "batch",
		Name:        "inputs",
		Help:        "Image inputs seen by the last run.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	batchSkipped := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "intake",
		Subsystem:   "batch",
		Name:        "skipped",
		Help:        "Non-image files skipped by the last run.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "intake",
		Subsystem:   "batch",
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last run finished.",
		ConstLabels: prometheus.Labels{"service": service},
	})

	registry.MustRegister(itemsTotal, stageDuration, batchInputs, batchSkipped, lastRun)

	return &BatchMetrics{
		registry:      registry,
		textfile:      textfile,
		itemsTotal:    itemsTotal,
		stageDuration: stageDuration,
		batchInputs:   batchInputs,
		batchSkipped:  batchSkipped,
		lastRun:       lastRun,
	}
}

func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *BatchMetrics) ObserveStage(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

func (m *BatchMetrics) FinishItem(item domain.ItemOutcome) {
	m.itemsTotal.WithLabelValues(string(item.State), string(item.Reason)).Inc()
}

func (m *BatchMetrics) FinishBatch(summary domain.BatchSummary) error {
	m.batchInputs.Set(float64(len(summary.Items)))
	m.batchSkipped.Set(float64(len(summary.Skipped)))
	m.lastRun.SetToCurrentTime()

	if m.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
