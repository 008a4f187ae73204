package metrics

import (
	"github.com/livepeer/reframe-media/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics tracks outbound calls to a dependency (storage backend,
// broker, remote asset fetch).
type ClientMetrics struct {
	RetryCount      *prometheus.GaugeVec
	FailureCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// PipelineMetrics tracks per-job-type outcomes across the worker runtime.
type PipelineMetrics struct {
	Count    *prometheus.CounterVec
	Duration *prometheus.SummaryVec
	Failures *prometheus.CounterVec
}

type ReframeMetrics struct {
	Version *prometheus.CounterVec

	JobsInFlight         prometheus.Gauge
	HTTPRequestsInFlight prometheus.Gauge
	JobsQueued           prometheus.Gauge

	CreateJobRequestCount       *prometheus.CounterVec
	CreateJobRequestDurationSec *prometheus.SummaryVec
	RateLimitedRequestCount     prometheus.Counter

	StorageClient ClientMetrics
	BrokerClient  ClientMetrics

	Pipeline PipelineMetrics

	TmpFilesCleaned prometheus.Counter
}

var pipelineLabels = []string{"job_type"}

func NewMetrics() *ReframeMetrics {
	m := &ReframeMetrics{
		Version: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "version",
			Help: "Current version of this service, incremented once on app startup.",
		}, []string{"app", "version"}),

		JobsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jobs_in_flight",
			Help: "Number of jobs currently executing in the worker pool",
		}),
		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being handled",
		}),
		JobsQueued: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jobs_queued",
			Help: "Number of jobs queued but not yet running",
		}),

		CreateJobRequestCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "create_job_request_count",
			Help: "Total number of job creation requests, by job type and status code",
		}, []string{"job_type", "status_code"}),
		CreateJobRequestDurationSec: promauto.NewSummaryVec(prometheus.SummaryOpts{
			Name: "create_job_request_duration_seconds",
			Help: "Latency of job creation requests in seconds",
		}, []string{"job_type", "success"}),
		RateLimitedRequestCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_request_count",
			Help: "Total number of requests rejected by the rate limiter",
		}),

		StorageClient: ClientMetrics{
			RetryCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "storage_client_retry_count",
				Help: "Number of retried storage backend operations",
			}, []string{"backend", "operation"}),
			FailureCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "storage_client_failure_count",
				Help: "Total number of failed storage backend operations",
			}, []string{"backend", "operation"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "storage_client_request_duration_seconds",
				Help:    "Time taken by storage backend operations",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"backend", "operation"}),
		},

		BrokerClient: ClientMetrics{
			RetryCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "broker_client_retry_count",
				Help: "Number of retried broker dispatch attempts",
			}, []string{"task"}),
			FailureCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "broker_client_failure_count",
				Help: "Total number of failed broker dispatch attempts",
			}, []string{"task"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "broker_client_dispatch_duration_seconds",
				Help:    "Time taken to dispatch a task to the broker",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}, []string{"task"}),
		},

		Pipeline: PipelineMetrics{
			Count: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "pipeline_run_count",
				Help: "Number of pipeline runs started, by job type",
			}, pipelineLabels),
			Duration: promauto.NewSummaryVec(prometheus.SummaryOpts{
				Name: "pipeline_run_duration_seconds",
				Help: "Time taken for a pipeline run to reach a terminal status",
			}, pipelineLabels),
			Failures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "pipeline_run_failure_count",
				Help: "Number of pipeline runs that ended in failed status",
			}, pipelineLabels),
		},

		TmpFilesCleaned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tmp_files_cleaned_total",
			Help: "Number of scratch files removed by the cleanup loop",
		}),
	}

	m.Version.WithLabelValues("reframe-media", config.Version).Inc()

	return m
}

var Metrics = NewMetrics()
