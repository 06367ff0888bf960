// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_submissions_total",
			Help: "Complaint submissions by outcome",
		},
		[]string{"outcome"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaints_publish_failures_total",
			Help: "Events that could not be published after the record was created",
		},
	)

	LookupOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_lookup_total",
			Help: "Customer lookups by outcome (hit, miss, skipped, failed, cached)",
		},
		[]string{"outcome"},
	)

	ConsumerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_messages_total",
			Help: "Messages handled per consumer group",
		},
		[]string{"group", "outcome"},
	)

	ConsumerRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_retries_total",
			Help: "Retry attempts per consumer group",
		},
		[]string{"group"},
	)

	ConsumerDeadLetters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_dead_letters_total",
			Help: "Messages sent to the dead-letter topic per consumer group",
		},
		[]string{"group"},
	)

	ConsumerMessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "consumer_message_duration_seconds",
			Help:    "Time from fetch to commit, retries included",
			Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 20},
		},
		[]string{"group"},
	)

	PartitionWorkersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "consumer_partition_workers",
			Help: "Running partition workers per consumer group",
		},
		[]string{"group"},
	)
)
