package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one App. Each App has its own registry so
// several instances can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	cacheTotal    *prometheus.CounterVec
	planOps       prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		stageTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bndl_stage_total",
			Help: "Pipeline stage executions by stage and result.",
		}, []string{"stage", "result"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bndl_stage_duration_seconds",
			Help:    "Pipeline stage latency.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
		cacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bndl_plan_cache_total",
			Help: "Plan cache lookups by result.",
		}, []string{"result"}),
		planOps: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bndl_plan_operations",
			Help:    "Number of operations per compiled plan.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bndl_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) observeStage(stage string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stageTotal.WithLabelValues(stage, result).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}
