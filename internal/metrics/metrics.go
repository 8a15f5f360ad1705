// Package metrics exposes import counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements core.Observer on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	previews      prometheus.Counter
	rows          *prometheus.CounterVec
	previewTime   prometheus.Histogram
	committedRows prometheus.Counter
	commits       prometheus.Counter
	failures      *prometheus.CounterVec
}

var _ core.Observer = (*Recorder)(nil)

// New creates a Recorder. Process and Go runtime collectors are included.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		previews: factory.NewCounter(prometheus.CounterOpts{
			Name: "candidate_import_previews_total",
			Help: "Files previewed.",
		}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_import_rows_total",
			Help: "Rows previewed, by validation outcome.",
		}, []string{"outcome"}),
		previewTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "candidate_import_preview_duration_seconds",
			Help:    "Time to read, parse and validate a file.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		committedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "candidate_import_committed_rows_total",
			Help: "Candidates inserted by commits.",
		}),
		commits: factory.NewCounter(prometheus.CounterOpts{
			Name: "candidate_import_commits_total",
			Help: "Import sessions committed.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_import_failures_total",
			Help: "Failed import operations, by stage and error code.",
		}, []string{"stage", "code"}),
	}
}

// TrackSessions exports the number of live import sessions.
func (r *Recorder) TrackSessions(count func() int) {
	promauto.With(r.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "candidate_import_sessions_active",
		Help: "Import sessions awaiting commit.",
	}, func() float64 { return float64(count()) })
}

// ImportPreviewed records a successful preview. Job IDs come from request
// paths and are not used as labels.
func (r *Recorder) ImportPreviewed(_ string, summary core.PreviewSummary, elapsed time.Duration) {
	r.previews.Inc()
	r.rows.WithLabelValues("valid").Add(float64(summary.ValidRows))
	r.rows.WithLabelValues("invalid").Add(float64(summary.InvalidRows))
	r.previewTime.Observe(elapsed.Seconds())
}

// ImportCommitted records a successful commit.
func (r *Recorder) ImportCommitted(_ string, inserted int64) {
	r.commits.Inc()
	r.committedRows.Add(float64(inserted))
}

// ImportFailed records a failure labelled with its user-facing code.
func (r *Recorder) ImportFailed(stage string, err error) {
	r.failures.WithLabelValues(stage, core.MapError(err).Code).Inc()
}

// Handler serves the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
