package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/dfa/pkg/domain"
)

// Metrics records engine activity in a dedicated Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	states         prometheus.Gauge
	symbols        prometheus.Gauge
	classification *prometheus.CounterVec
	inputLength    prometheus.Histogram
}

// NewMetrics creates the collectors under the given namespace (default "dfa").
// Pass withRuntime to also export Go runtime and process metrics.
func NewMetrics(namespace string, withRuntime bool) *Metrics {
	if namespace == "" {
		namespace = "dfa"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Specification load attempts by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent fetching, parsing and building a specification.",
			Buckets:   prometheus.DefBuckets,
		}),
		states: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "states",
			Help:      "Number of states in the loaded automaton.",
		}),
		symbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alphabet_size",
			Help:      "Number of symbols in the loaded automaton's alphabet.",
		}),
		classification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classified inputs by verdict (accept, reject, error).",
		}, []string{"verdict"}),
		inputLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_symbols",
			Help:      "Length of classified inputs in symbols.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	m.registry.MustRegister(m.loads, m.loadDuration, m.states, m.symbols, m.classification, m.inputLength)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry (for tests and custom exporters).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad:     m.observeLoad,
		OnClassify: m.observeClassify,
	}
}

func (m *Metrics) observeLoad(_ context.Context, e *domain.LoadEvent) {
	m.loadDuration.Observe(e.Duration.Seconds())
	if e.Err != nil {
		m.loads.WithLabelValues("error").Inc()
		return
	}
	m.loads.WithLabelValues("ok").Inc()
	m.states.Set(float64(e.States))
	m.symbols.Set(float64(e.Symbols))
}

func (m *Metrics) observeClassify(_ context.Context, e *domain.ClassifyEvent) {
	m.inputLength.Observe(float64(e.Length))
	switch {
	case e.Err != nil:
		m.classification.WithLabelValues("error").Inc()
	case e.Accepted:
		m.classification.WithLabelValues("accept").Inc()
	default:
		m.classification.WithLabelValues("reject").Inc()
	}
}
