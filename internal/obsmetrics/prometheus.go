// Package obsmetrics exposes codec-relevant counters, gauges and
// histograms through Prometheus, mirroring the metrics-collector shape
// used elsewhere in this stack but renamed to the concerns this codec
// actually has: decode/encode throughput, union branch attempts, error
// priority distribution, and worker-pool occupancy.
package obsmetrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the metrics-reporting contract the rest of the module
// depends on, so a NoOp implementation can stand in during tests.
type Collector interface {
	IncCounter(name string, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
}

// PrometheusCollector implements Collector using a dedicated registry and
// an optional "/metrics" HTTP endpoint.
type PrometheusCollector struct {
	registry *prometheus.Registry

	decodeTotal    *prometheus.CounterVec
	encodeTotal    *prometheus.CounterVec
	unionAttempts  *prometheus.CounterVec
	registryErrors *prometheus.CounterVec

	workerPoolOccupancy *prometheus.GaugeVec
	jobQueueDepth       *prometheus.GaugeVec

	decodeDuration *prometheus.HistogramVec
	encodeDuration *prometheus.HistogramVec
	errorPriority  *prometheus.HistogramVec

	mu     sync.RWMutex
	server *http.Server
}

// NewPrometheusCollector builds a PrometheusCollector and, when port > 0,
// starts serving "/metrics" on that port.
func NewPrometheusCollector(port int) *PrometheusCollector {
	registry := prometheus.NewRegistry()
	c := &PrometheusCollector{registry: registry}

	c.decodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smppcodec_decode_total",
		Help: "Total number of descriptor decode calls",
	}, []string{"descriptor", "result"})

	c.encodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smppcodec_encode_total",
		Help: "Total number of descriptor encode calls",
	}, []string{"descriptor", "result"})

	c.unionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smppcodec_union_branch_attempts_total",
		Help: "Total number of union branch attempts during decode/encode",
	}, []string{"descriptor", "outcome"})

	c.registryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smppcodec_registry_errors_total",
		Help: "Total number of descriptor registry I/O errors",
	}, []string{"operation"})

	c.workerPoolOccupancy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smppcodec_worker_pool_occupancy",
		Help: "Number of worker pool slots currently in use",
	}, []string{"pool"})

	c.jobQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smppcodec_job_queue_depth",
		Help: "Number of jobs queued awaiting a worker slot",
	}, []string{"pool"})

	c.decodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smppcodec_decode_duration_seconds",
		Help:    "Time spent decoding a descriptor",
		Buckets: prometheus.DefBuckets,
	}, []string{"descriptor"})

	c.encodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smppcodec_encode_duration_seconds",
		Help:    "Time spent encoding a descriptor",
		Buckets: prometheus.DefBuckets,
	}, []string{"descriptor"})

	c.errorPriority = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smppcodec_error_priority",
		Help:    "Priority score of reported TypeMismatch errors",
		Buckets: []float64{0, 3, 6, 9, 12, 15, 18, 21, 24},
	}, []string{"descriptor"})

	registry.MustRegister(
		c.decodeTotal, c.encodeTotal, c.unionAttempts, c.registryErrors,
		c.workerPoolOccupancy, c.jobQueueDepth,
		c.decodeDuration, c.encodeDuration, c.errorPriority,
	)

	if port > 0 {
		c.startServer(port)
	}
	return c
}

func (c *PrometheusCollector) IncCounter(name string, labels map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case "decode_total":
		c.decodeTotal.With(labels).Inc()
	case "encode_total":
		c.encodeTotal.With(labels).Inc()
	case "union_branch_attempts_total":
		c.unionAttempts.With(labels).Inc()
	case "registry_errors_total":
		c.registryErrors.With(labels).Inc()
	}
}

func (c *PrometheusCollector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case "worker_pool_occupancy":
		c.workerPoolOccupancy.With(labels).Set(value)
	case "job_queue_depth":
		c.jobQueueDepth.With(labels).Set(value)
	}
}

func (c *PrometheusCollector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case "decode_duration":
		c.decodeDuration.With(labels).Observe(value)
	case "encode_duration":
		c.encodeDuration.With(labels).Observe(value)
	case "error_priority":
		c.errorPriority.With(labels).Observe(value)
	}
}

func (c *PrometheusCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	c.ObserveHistogram(name, duration.Seconds(), labels)
}

func (c *PrometheusCollector) startServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	c.server = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go c.server.ListenAndServe()
}

// Stop shuts down the metrics HTTP server, if one was started.
func (c *PrometheusCollector) Stop() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

// NoOp discards every metric; used in tests and whenever metrics are
// disabled by configuration.
type NoOp struct{}

func (NoOp) IncCounter(string, map[string]string)                    {}
func (NoOp) SetGauge(string, float64, map[string]string)             {}
func (NoOp) ObserveHistogram(string, float64, map[string]string)     {}
func (NoOp) RecordDuration(string, time.Duration, map[string]string) {}
