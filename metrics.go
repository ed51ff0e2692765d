package islet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "islet"

// Metrics instruments render activity. Construct with NewMetrics against
// the registerer of your choice and inject via WithMetrics; a renderer
// without metrics skips all instrumentation (every method is nil-safe).
type Metrics struct {
	renders   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	lazyLoads *prometheus.CounterVec
	unmounts  prometheus.Counter
	mounted   prometheus.Gauge
	pending   prometheus.Gauge
}

// NewMetrics builds and registers the renderer's collectors. Panics on
// collector name collisions, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "renders_total",
			Help:      "Mount points processed, by component, hydration mode and resulting state.",
		}, []string{"component", "mode", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent processing one mount point.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Per-element errors by kind (config, props, sealed, unregistered, load, render, unmount).",
		}, []string{"kind"}),
		lazyLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lazy_loads_total",
			Help:      "Lazy component loads by result.",
		}, []string{"result"}),
		unmounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unmounts_total",
			Help:      "Instances unmounted through detach or refresh.",
		}),
		mounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mounted_instances",
			Help:      "Instances currently tracked as mounted.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_lazy_loads",
			Help:      "Lazy loads currently in flight.",
		}),
	}

	reg.MustRegister(m.renders, m.duration, m.errors, m.lazyLoads, m.unmounts, m.mounted, m.pending)
	return m
}

func (m *Metrics) observeRender(component string, mode Mode, state State, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(component, string(mode), string(state)).Inc()
	m.duration.WithLabelValues(component).Observe(d.Seconds())
}

func (m *Metrics) observeError(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeLazyLoad(ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.lazyLoads.WithLabelValues(result).Inc()
}

func (m *Metrics) observeUnmount() {
	if m == nil {
		return
	}
	m.unmounts.Inc()
}

func (m *Metrics) setMounted(n int) {
	if m == nil {
		return
	}
	m.mounted.Set(float64(n))
}

func (m *Metrics) addPending(delta int) {
	if m == nil {
		return
	}
	m.pending.Add(float64(delta))
}
