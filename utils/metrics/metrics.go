package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

// Initialize installs the package registry as the default registerer
func Initialize() {
	prometheus.DefaultRegisterer = registry
}

// EvaluationMetrics tracks cycle evaluation outcomes
type EvaluationMetrics struct {
	Evaluations  prometheus.Counter
	Profitable   prometheus.Counter
	Unprofitable prometheus.Counter
	Failures     prometheus.Counter
	Duration     prometheus.Histogram
}

func NewEvaluationMetrics(namespace string) *EvaluationMetrics {
	return &EvaluationMetrics{
		Evaluations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of cycle evaluations",
		}),
		Profitable: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profitable_total",
			Help:      "Total number of profitable evaluations",
		}),
		Unprofitable: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unprofitable_total",
			Help:      "Total number of unprofitable evaluations",
		}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of aborted evaluations",
		}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "End-to-end evaluation duration",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
