package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RequestValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iedi_request_validation_failures_total",
			Help: "Analysis requests rejected before reaching the backend, by validation kind",
		},
		[]string{"kind"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iedi_backend_requests_total",
			Help: "Requests sent to the IEDI backend by endpoint and HTTP status",
		},
		[]string{"endpoint", "code"},
	)

	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iedi_backend_request_duration_seconds",
			Help:    "Latency of IEDI backend requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	BankCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iedi_bank_cache_lookups_total",
			Help: "Bank catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
