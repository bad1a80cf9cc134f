// Package metrics exposes prometheus collectors for the proxy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restproxy"

type Config struct {
	// Enabled controls whether the /metrics route is served.
	Enabled bool `conf:"enabled"`
}

// Recorder records proxy and upstream measurements.
type Recorder struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	transportErrors  *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	inflight         prometheus.Gauge
}

// NewRecorder registers the proxy collectors with registry. A nil
// registry creates a fresh one, which keeps tests independent of
// the global default registerer.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "dispatch_total",
				Help:      "Total number of dispatched requests by method, operation and upstream status",
			},
			[]string{"method", "operation", "status"},
		),
		rejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "rejected_total",
				Help:      "Total number of requests rejected before reaching the upstream",
			},
			[]string{"reason"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "errors_total",
				Help:      "Total number of upstream transport errors by reason",
			},
			[]string{"operation", "reason"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "duration_seconds",
				Help:      "Duration of upstream calls",
				Buckets: []float64{
					.001, .005, .01, .025,
					.05, .1, .25, .5,
					1, 2.5, 5, 10,
				},
			},
			[]string{"operation"},
		),
		inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "inflight_requests",
				Help:      "Number of dispatches currently executing",
			},
		),
	}
}

// Dispatched counts a completed dispatch.
func (r *Recorder) Dispatched(method, operation string, status int) {
	r.dispatchTotal.WithLabelValues(method, operation, strconv.Itoa(status)).Inc()
}

// Rejected counts a request that never reached the upstream.
func (r *Recorder) Rejected(reason string) {
	r.rejectedTotal.WithLabelValues(reason).Inc()
}

// TransportFailed counts a failed upstream call.
func (r *Recorder) TransportFailed(operation, reason string) {
	r.transportErrors.WithLabelValues(operation, reason).Inc()
}

// ObserveUpstream records the duration of an upstream call.
func (r *Recorder) ObserveUpstream(operation string, d time.Duration) {
	r.upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// TrackInflight increments the inflight gauge and returns a func
// that decrements it again.
func (r *Recorder) TrackInflight() func() {
	r.inflight.Inc()
	return r.inflight.Dec
}

// ObserveSlots exports the execution pool occupancy. stat is called
// on every scrape. It must be called at most once per recorder.
func (r *Recorder) ObserveSlots(stat func() (acquired, total int32)) {
	factory := promauto.With(r.registry)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "slots_acquired",
			Help:      "Number of execution slots currently in use",
		},
		func() float64 {
			acquired, _ := stat()
			return float64(acquired)
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "slots_total",
			Help:      "Number of execution slots created",
		},
		func() float64 {
			_, total := stat()
			return float64(total)
		},
	)
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
