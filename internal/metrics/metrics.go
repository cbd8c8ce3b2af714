package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/relay-core/internal/outputs"
	"github.com/nerrad567/relay-core/internal/wifi"
)

const namespace = "relaycore"

// Collector owns a private Prometheus registry and every Relay Core metric.
//
// It satisfies outputs.Observer, the api Metrics interface, and produces
// wifi.Hooks, so one value is wired into each layer at boot.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	outputWrites *prometheus.CounterVec
	outputLevel  *prometheus.GaugeVec

	wifiPhase      *prometheus.GaugeVec
	wifiConnects   *prometheus.CounterVec
	wifiReconnects prometheus.Counter
	wifiAttaches   *prometheus.CounterVec
	wifiAttached   prometheus.Gauge

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpSetResults *prometheus.CounterVec

	buildInfo *prometheus.GaugeVec
}

// New creates a Collector with Go runtime and process collectors attached.
//
// Parameters:
//   - lines: bank size; every line level gauge is pre-created at 0
func New(lines int) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		outputWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "writes_total",
			Help:      "Accepted output writes by line and requested level",
		}, []string{"output", "state"}),
		outputLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "level",
			Help:      "Current output level (0=off, 1=on)",
		}, []string{"output"}),

		wifiPhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wifi",
			Name:      "phase",
			Help:      "Station phase; 1 on the current phase, 0 elsewhere",
		}, []string{"phase"}),
		wifiConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wifi",
			Name:      "connect_requests_total",
			Help:      "Connect requests issued to the radio by result",
		}, []string{"result"}),
		wifiReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wifi",
			Name:      "reconnects_total",
			Help:      "Reconnects triggered by a disconnect",
		}),
		wifiAttaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wifi",
			Name:      "attach_attempts_total",
			Help:      "Attach hook invocations by result",
		}, []string{"result"}),
		wifiAttached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wifi",
			Name:      "attached",
			Help:      "1 once the attach hook has succeeded",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Completed HTTP requests by route and status",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"route"}),
		httpSetResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "set_results_total",
			Help:      "Set request outcomes",
		}, []string{"result"}),

		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build metadata; always 1",
		}, []string{"version"}),
	}

	c.registry.MustRegister(
		c.outputWrites, c.outputLevel,
		c.wifiPhase, c.wifiConnects, c.wifiReconnects, c.wifiAttaches, c.wifiAttached,
		c.httpRequests, c.httpDuration, c.httpSetResults,
		c.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for i := range lines {
		c.outputLevel.WithLabelValues(strconv.Itoa(i)).Set(0)
	}
	for _, p := range wifi.AllPhases {
		c.wifiPhase.WithLabelValues(p.String()).Set(0)
	}
	c.wifiPhase.WithLabelValues(wifi.PhaseIdle.String()).Set(1)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// SetBuildInfo records the running version.
func (c *Collector) SetBuildInfo(version string) {
	c.buildInfo.Reset()
	c.buildInfo.WithLabelValues(version).Set(1)
}

// OutputChanged implements outputs.Observer.
func (c *Collector) OutputChanged(change outputs.Change) {
	output := strconv.Itoa(change.Index)
	level := outputs.LevelValue(change.Level)
	c.outputWrites.WithLabelValues(output, strconv.Itoa(level)).Inc()
	c.outputLevel.WithLabelValues(output).Set(float64(level))
}

// ObserveRequest records a completed HTTP request.
func (c *Collector) ObserveRequest(route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveSetResult records the outcome of a set request.
func (c *Collector) ObserveSetResult(result string) {
	c.httpSetResults.WithLabelValues(result).Inc()
}

// WifiHooks returns machine hooks feeding the wifi metrics.
func (c *Collector) WifiHooks() wifi.Hooks {
	return wifi.Hooks{
		OnPhase: func(from, to wifi.Phase) {
			c.wifiPhase.WithLabelValues(from.String()).Set(0)
			c.wifiPhase.WithLabelValues(to.String()).Set(1)
		},
		OnConnect: func(err error) {
			c.wifiConnects.WithLabelValues(resultLabel(err)).Inc()
		},
		OnReconnect: func() {
			c.wifiReconnects.Inc()
		},
		OnAttach: func(err error) {
			c.wifiAttaches.WithLabelValues(resultLabel(err)).Inc()
			if err == nil {
				c.wifiAttached.Set(1)
			}
		},
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
