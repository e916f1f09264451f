package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Widget and API requests are template renders and single-row reads.
	requestBuckets = prometheus.ExponentialBuckets(0.0005, 2.5, 10)
	// Maintenance sweeps delete in bulk and may take seconds.
	maintenanceBuckets = prometheus.ExponentialBuckets(0.01, 3, 8)
)

type collectors struct {
	authAttempts        *prometheus.CounterVec
	apiLatency          *prometheus.HistogramVec
	computations        *prometheus.CounterVec
	renders             *prometheus.CounterVec
	settingsUpdates     *prometheus.CounterVec
	lastBMI             prometheus.Gauge
	maintenanceRuns     *prometheus.CounterVec
	maintenanceDuration *prometheus.HistogramVec
	maintenanceLastRun  *prometheus.GaugeVec
}

type metricFactory struct{ namespace string }

func (f metricFactory) counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: f.namespace, Name: name, Help: help}, labels)
}

func (f metricFactory) histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: f.namespace, Name: name, Help: help, Buckets: buckets}, labels)
}

func (f metricFactory) gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: f.namespace, Name: name, Help: help}, labels)
}

func newCollectors(namespace string) *collectors {
	f := metricFactory{namespace: namespace}
	return &collectors{
		authAttempts: f.counter("auth_attempts_total",
			"Admin login attempts by result.", "result"),
		apiLatency: f.histogram("api_latency_seconds",
			"Request latency by route template.", requestBuckets, "method", "path", "status"),
		computations: f.counter("bmi_computations_total",
			"BMI computations by source and resulting classification.", "source", "classification"),
		renders: f.counter("widget_renders_total",
			"Sidebar widget and shortcode renders by surface and outcome.", "surface", "result"),
		settingsUpdates: f.counter("settings_updates_total",
			"Measurement saves by result.", "result"),
		lastBMI: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_bmi",
			Help:      "BMI of the stored measurements as of the last save; 0 when unconfigured.",
		}),
		maintenanceRuns: f.counter("maintenance_runs_total",
			"Maintenance job executions by result.", "job", "result"),
		maintenanceDuration: f.histogram("maintenance_duration_seconds",
			"Maintenance job duration.", maintenanceBuckets, "job"),
		maintenanceLastRun: f.gauge("maintenance_last_success_timestamp",
			"Unix time of the last successful run per maintenance job.", "job"),
	}
}

func (c *collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.authAttempts, c.apiLatency, c.computations, c.renders, c.settingsUpdates,
		c.lastBMI, c.maintenanceRuns, c.maintenanceDuration, c.maintenanceLastRun,
	}
}

func observeDuration(observer prometheus.Observer, d time.Duration) {
	if observer != nil {
		observer.Observe(max(d, 0).Seconds())
	}
}
