// Package metrics wraps prometheus/client_golang with the counters and
// gauges specific to the I/O pool pipeline: jobs in flight, bytes moved
// in each direction, and bytes skipped by the sparse writer. The shape
// (a Registry struct wrapping *prometheus.Registry, built once in a
// constructor and exposing typed recording methods) follows this
// codebase's existing metrics registry, trimmed to the job/pool
// domain this tool actually has.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry wraps a Prometheus registry with the pool's own metrics.
type Registry struct {
	registry *prometheus.Registry

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobsActive  prometheus.Gauge

	poolSize   *prometheus.GaugeVec
	poolActive *prometheus.GaugeVec
	poolQueued *prometheus.GaugeVec

	bytesReadTotal      prometheus.Counter
	bytesWrittenTotal    prometheus.Counter
	sparseSkipBytesTotal prometheus.Counter

	filesProcessedTotal *prometheus.CounterVec
	errorsTotal         *prometheus.CounterVec
}

// NewRegistry constructs a Registry with every metric created and
// registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zstream_jobs_total",
			Help: "Total number of I/O jobs executed, by pool and status.",
		}, []string{"pool", "status"}),

		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zstream_job_duration_seconds",
			Help:    "I/O job execution duration in seconds, by pool.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"pool"}),

		jobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zstream_jobs_active",
			Help: "Number of I/O jobs currently in flight across all pools.",
		}),

		poolSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zstream_pool_size",
			Help: "Configured total job buffers for a pool.",
		}, []string{"pool"}),

		poolActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zstream_pool_active",
			Help: "Jobs currently checked out of a pool's available set.",
		}, []string{"pool"}),

		poolQueued: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zstream_pool_queued",
			Help: "Jobs queued on a pool's background dispatcher.",
		}, []string{"pool"}),

		bytesReadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zstream_bytes_read_total",
			Help: "Total bytes read from source files.",
		}),

		bytesWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zstream_bytes_written_total",
			Help: "Total bytes written to destination files, including bytes elided by sparse seeks.",
		}),

		sparseSkipBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zstream_sparse_skip_bytes_total",
			Help: "Total bytes elided from output files via sparse seeking instead of being written.",
		}),

		filesProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zstream_files_processed_total",
			Help: "Total files processed, by operation and status.",
		}, []string{"operation", "status"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zstream_errors_total",
			Help: "Total errors encountered, by component.",
		}, []string{"component"}),
	}

	r.registerMetrics()
	return r
}

func (r *Registry) registerMetrics() {
	collectors := []prometheus.Collector{
		r.jobsTotal,
		r.jobDuration,
		r.jobsActive,
		r.poolSize,
		r.poolActive,
		r.poolQueued,
		r.bytesReadTotal,
		r.bytesWrittenTotal,
		r.sparseSkipBytesTotal,
		r.filesProcessedTotal,
		r.errorsTotal,
	}
	for _, c := range collectors {
		r.registry.MustRegister(c)
	}
}

// GetRegistry returns the underlying Prometheus registry, e.g. to hand
// to promhttp.HandlerFor when serving /metrics.
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordJob records the completion of a single I/O job.
func (r *Registry) RecordJob(pool, status string, duration time.Duration) {
	r.jobsTotal.WithLabelValues(pool, status).Inc()
	r.jobDuration.WithLabelValues(pool).Observe(duration.Seconds())
}

// SetJobsActive sets the number of jobs currently in flight.
func (r *Registry) SetJobsActive(count int) { r.jobsActive.Set(float64(count)) }

// SetPoolStats records a pool's size, active, and queued job counts.
func (r *Registry) SetPoolStats(pool string, size, active, queued int) {
	r.poolSize.WithLabelValues(pool).Set(float64(size))
	r.poolActive.WithLabelValues(pool).Set(float64(active))
	r.poolQueued.WithLabelValues(pool).Set(float64(queued))
}

// AddBytesRead adds n to the total bytes read from source files.
func (r *Registry) AddBytesRead(n int64) { r.bytesReadTotal.Add(float64(n)) }

// AddBytesWritten adds n to the total bytes written to destination
// files.
func (r *Registry) AddBytesWritten(n int64) { r.bytesWrittenTotal.Add(float64(n)) }

// AddSparseSkipBytes adds n to the total bytes elided via sparse
// seeking.
func (r *Registry) AddSparseSkipBytes(n int64) { r.sparseSkipBytesTotal.Add(float64(n)) }

// RecordFileProcessed records the completion of compressing or
// decompressing one file.
func (r *Registry) RecordFileProcessed(operation, status string) {
	r.filesProcessedTotal.WithLabelValues(operation, status).Inc()
}

// RecordError records an error attributed to component.
func (r *Registry) RecordError(component string) {
	r.errorsTotal.WithLabelValues(component).Inc()
}
