package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusScored     = "scored"
	StatusDegenerate = "degenerate"
	StatusFailed     = "failed"
)

// Metrics holds the batch counters on a private registry, so several
// engines in one process (tests, the API server) never collide. A nil
// *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	documents    *prometheus.CounterVec
	scoreSeconds prometheus.Histogram
	fetchSeconds prometheus.Histogram
	fetchBytes   prometheus.Counter
	cacheHits    prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "filingmetrics_documents_total",
			Help: "Documents processed, by outcome",
		}, []string{"status"}),
		scoreSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "filingmetrics_score_seconds",
			Help:    "Time spent scoring one document",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		fetchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "filingmetrics_fetch_seconds",
			Help:    "Time spent downloading one document",
			Buckets: prometheus.DefBuckets,
		}),
		fetchBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "filingmetrics_fetch_bytes_total",
			Help: "Bytes downloaded before decompression",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "filingmetrics_cache_hits_total",
			Help: "Documents served from the text cache",
		}),
	}
}

func (m *Metrics) Document(status string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(status).Inc()
}

func (m *Metrics) Scored(d time.Duration) {
	if m == nil {
		return
	}
	m.scoreSeconds.Observe(d.Seconds())
}

func (m *Metrics) Fetched(d time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.fetchSeconds.Observe(d.Seconds())
	m.fetchBytes.Add(float64(bytes))
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node_exporter textfile format,
// for batch runs that exit before anything could scrape them.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
