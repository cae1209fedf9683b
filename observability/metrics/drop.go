package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type DropMetrics struct {
	mintsSettled   *prometheus.CounterVec
	mintsRejected  *prometheus.CounterVec
	unitsMinted    *prometheus.CounterVec
	previewsServed prometheus.Counter
	stageUpdates   *prometheus.CounterVec
}

var (
	dropOnce     sync.Once
	dropRegistry *DropMetrics
)

func Drop() *DropMetrics {
	dropOnce.Do(func() {
		dropRegistry = &DropMetrics{
			mintsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "drop_mints_settled_total",
				Help: "Count of committed mints by authorization strategy and stage.",
			}, []string{"strategy", "stage"}),
			mintsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "drop_mints_rejected_total",
				Help: "Count of rejected mint attempts by reason.",
			}, []string{"reason"}),
			unitsMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "drop_units_minted_total",
				Help: "Units minted by authorization strategy.",
			}, []string{"strategy"}),
			previewsServed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "drop_previews_served_total",
				Help: "Count of read-only mint previews served.",
			}),
			stageUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "drop_stage_updates_total",
				Help: "Count of stage configuration changes by kind.",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(
			dropRegistry.mintsSettled,
			dropRegistry.mintsRejected,
			dropRegistry.unitsMinted,
			dropRegistry.previewsServed,
			dropRegistry.stageUpdates,
		)
	})
	return dropRegistry
}

func (m *DropMetrics) ObserveMintSettled(strategy string, stageIndex uint32, quantity uint64) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "unknown"
	}
	m.mintsSettled.WithLabelValues(strategy, strconv.FormatUint(uint64(stageIndex), 10)).Inc()
	m.unitsMinted.WithLabelValues(strategy).Add(float64(quantity))
}

func (m *DropMetrics) ObserveMintRejected(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.mintsRejected.WithLabelValues(reason).Inc()
}

func (m *DropMetrics) ObservePreview() {
	if m == nil {
		return
	}
	m.previewsServed.Inc()
}

func (m *DropMetrics) ObserveStageUpdate(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.stageUpdates.WithLabelValues(kind).Inc()
}
