package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed    prometheus.Counter
	OutboxEventsFailed       prometheus.Counter
	OutboxEventsDeadLettered prometheus.Counter
	OutboxProcessingLatency  prometheus.Histogram

	// Occupancy metrics, updated by the reconciler pass
	OccupiedBeds       prometheus.Gauge
	ActiveAdmissions   prometheus.Gauge
	OccupancyRepairs   prometheus.Counter
	ReconcilerFailures prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxEventsDeadLettered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_dead_lettered_total",
			Help:      "Total number of outbox events moved to the dead letter queue",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OccupiedBeds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupied_beds",
			Help:      "Current number of beds marked occupied",
		}),
		ActiveAdmissions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_admissions",
			Help:      "Current number of patients admitted and not discharged",
		}),
		OccupancyRepairs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occupancy_repairs_total",
			Help:      "Total number of bed occupancy mismatches repaired by the reconciler",
		}),
		ReconcilerFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciler_failures_total",
			Help:      "Total number of failed reconciler passes",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
