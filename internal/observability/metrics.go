package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repository_operations_total",
		Help: "Outcomes of repository operations by repository and operation.",
	}, []string{"repository", "operation", "result"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_jobs_processed_total",
		Help: "Audit jobs finished by the worker, by terminal outcome.",
	}, []string{"outcome"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_queue_depth",
		Help: "Pending entries in the audit queue as of the last observation.",
	})
)

func RecordRepositoryOperation(_ context.Context, repository, operation, result string) {
	repositoryOperations.WithLabelValues(repository, operation, result).Inc()
}

func RecordJobOutcome(outcome string) {
	jobsProcessed.WithLabelValues(outcome).Inc()
}

func SetQueueDepth(n int64) {
	queueDepth.Set(float64(n))
}
