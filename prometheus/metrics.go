// Package prometheus records run metrics with the Prometheus client and
// optionally pushes them to a Pushgateway when a run ends.
package prometheus

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Job is the Pushgateway job name.
const Job = "transpress"

// Ensure Metrics implements transpress.Metrics at compile time.
var _ transpress.Metrics = (*Metrics)(nil)

// Metrics implements transpress.Metrics on Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	articles        *prometheus.CounterVec
	articleDuration *prometheus.HistogramVec
	images          *prometheus.CounterVec
	runDuration     prometheus.Gauge
	lastRun         prometheus.Gauge
}

// NewMetrics creates Metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transpress_articles_total",
			Help: "Articles processed, by outcome.",
		}, []string{"outcome"}),
		articleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transpress_article_duration_seconds",
			Help:    "Time spent processing one article, by outcome.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"outcome"}),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transpress_images_total",
			Help: "Images processed, by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transpress_run_duration_seconds",
			Help: "Duration of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transpress_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.articles,
		m.articleDuration,
		m.images,
		m.runDuration,
		m.lastRun,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ArticleProcessed records one article outcome.
func (m *Metrics) ArticleProcessed(outcome string, d time.Duration) {
	m.articles.WithLabelValues(outcome).Inc()
	m.articleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ImageProcessed records one image outcome.
func (m *Metrics) ImageProcessed(outcome string) {
	m.images.WithLabelValues(outcome).Inc()
}

// RunFinished records the run duration and completion time.
func (m *Metrics) RunFinished(d time.Duration) {
	m.runDuration.Set(d.Seconds())
	m.lastRun.SetToCurrentTime()
}

// Push sends all collected metrics to the Pushgateway at url, replacing
// earlier pushes of the same job.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if err := push.New(url, Job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return transpress.WrapError(transpress.EUNAVAILABLE, err, fmt.Sprintf("push metrics: %v", err))
	}
	return nil
}
