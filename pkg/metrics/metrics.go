// Package metrics groups the Prometheus instruments exported by recall.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "recall"

// Metrics groups all Prometheus instruments used by the service.
//
// Each Metrics owns its registry so several instances can coexist in one
// process (for example across tests). A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	MemoryOps         *prometheus.CounterVec
	MalformedTurns    prometheus.Counter
	ChatRequests      *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	WorkerJobs        *prometheus.CounterVec
}

// New builds a Metrics with a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MemoryOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "memory_operations_total",
			Help:      "Memory operations by operation and outcome status.",
		}, []string{"operation", "status"}),
		MalformedTurns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "memory_malformed_turns_total",
			Help:      "Stored turns skipped because they failed to decode.",
		}),
		ChatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by result and whether history context was used.",
		}, []string{"result", "has_context"}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "generation_latency_ms",
			Help:      "Latency of language model generation in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
		WorkerJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "worker_jobs_total",
			Help:      "Background jobs by outcome (processed, failed, dropped).",
		}, []string{"outcome"}),
	}
}

// ObserveMemoryOp counts one memory operation outcome.
func (m *Metrics) ObserveMemoryOp(operation, status string) {
	if m == nil {
		return
	}
	m.MemoryOps.WithLabelValues(operation, status).Inc()
}

// ObserveMalformedTurns counts skipped stored records.
func (m *Metrics) ObserveMalformedTurns(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MalformedTurns.Add(float64(n))
}

// ObserveChat counts one chat request.
func (m *Metrics) ObserveChat(result string, hasContext bool) {
	if m == nil {
		return
	}
	ctxLabel := "false"
	if hasContext {
		ctxLabel = "true"
	}
	m.ChatRequests.WithLabelValues(result, ctxLabel).Inc()
}

// ObserveGeneration records model latency.
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

// ObserveWorkerJob counts one background job outcome.
func (m *Metrics) ObserveWorkerJob(outcome string) {
	if m == nil {
		return
	}
	m.WorkerJobs.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
