// Package metrics collects harvest counters in a private Prometheus registry
// and exports them as a node_exporter textfile at the end of a stage.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors for one process. A nil Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	apiRequests      *prometheus.CounterVec
	retries          *prometheus.CounterVec
	admitted         prometheus.Counter
	rejected         *prometheus.CounterVec
	videosResolved   prometheus.Counter
	videosUnresolved *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	lastSuccess      *prometheus.GaugeVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytharvest_api_requests_total",
			Help: "YouTube Data API requests, by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	r.retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytharvest_retries_total",
			Help: "Backoff retries, by operation.",
		},
		[]string{"operation"},
	)
	r.admitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ytharvest_channels_admitted_total",
			Help: "Channels admitted by discovery.",
		},
	)
	r.rejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytharvest_channels_rejected_total",
			Help: "Discovery candidates rejected, by reason.",
		},
		[]string{"reason"},
	)
	r.videosResolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ytharvest_videos_resolved_total",
			Help: "Channels with an enriched sample video.",
		},
	)
	r.videosUnresolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytharvest_videos_unresolved_total",
			Help: "Channels without a sample video, by reason.",
		},
		[]string{"reason"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytharvest_cache_lookups_total",
			Help: "Redis cache lookups, by bucket and result.",
		},
		[]string{"bucket", "result"},
	)
	r.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytharvest_stage_duration_seconds",
			Help:    "Stage wall time in seconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"stage"},
	)
	r.lastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ytharvest_stage_last_success_timestamp_seconds",
			Help: "Unix time of the last successful stage completion.",
		},
		[]string{"stage"},
	)

	r.registry.MustRegister(
		r.apiRequests,
		r.retries,
		r.admitted,
		r.rejected,
		r.videosResolved,
		r.videosUnresolved,
		r.cacheLookups,
		r.stageDuration,
		r.lastSuccess,
	)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// APIRequest records one HTTP exchange.
func (r *Recorder) APIRequest(endpoint string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

// Retry records one backoff retry.
func (r *Recorder) Retry(operation string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(operation).Inc()
}

// Admitted records admitted channels.
func (r *Recorder) Admitted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.admitted.Add(float64(n))
}

// Rejected records rejected candidates for reason.
func (r *Recorder) Rejected(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rejected.WithLabelValues(reason).Add(float64(n))
}

// VideosResolved records channels that received a video.
func (r *Recorder) VideosResolved(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.videosResolved.Add(float64(n))
}

// VideosUnresolved records channels left without a video.
func (r *Recorder) VideosUnresolved(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.videosUnresolved.WithLabelValues(reason).Add(float64(n))
}

// CacheLookup records a cache read.
func (r *Recorder) CacheLookup(bucket string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(bucket, result).Inc()
}

// StageFinished records stage timing and, on success, the completion time.
func (r *Recorder) StageFinished(stage string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err == nil {
		r.lastSuccess.WithLabelValues(stage).SetToCurrentTime()
	}
}

// WriteTextfile atomically writes every metric to path in the text exposition
// format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: ensure textfile directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
