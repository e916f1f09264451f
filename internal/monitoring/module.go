package monitoring

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	promcollectors "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric the widget exports.
const DefaultNamespace = "bmiwidget"

// Options control monitoring module configuration.
type Options struct {
	// Namespace defaults to DefaultNamespace.
	Namespace               string
	DisableGoCollector      bool
	DisableProcessCollector bool
}

// Module owns the Prometheus registry, the in-memory counters behind the admin
// summary, and the health probes.
type Module struct {
	registry *prometheus.Registry
	metrics  *collectors
	stats    *statStore
	health   *HealthManager
}

// NewModule builds a module on a private registry so tests can create as many
// as they like.
func NewModule(opts Options) (*Module, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	metrics := newCollectors(namespace)
	toRegister := metrics.all()
	if !opts.DisableGoCollector {
		toRegister = append(toRegister, promcollectors.NewGoCollector())
	}
	if !opts.DisableProcessCollector {
		toRegister = append(toRegister, promcollectors.NewProcessCollector(promcollectors.ProcessCollectorOpts{Namespace: namespace}))
	}

	registry := prometheus.NewRegistry()
	for _, collector := range toRegister {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return &Module{
		registry: registry,
		metrics:  metrics,
		stats:    newStatStore(),
		health:   NewHealthManager(),
	}, nil
}

// Registry exposes the underlying Prometheus registry.
func (m *Module) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text or OpenMetrics format.
func (m *Module) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:          m.registry,
		EnableOpenMetrics: true,
	})
}

// Health exposes the liveness and readiness probes.
func (m *Module) Health() *HealthManager {
	if m == nil {
		return nil
	}
	return m.health
}

var current atomic.Pointer[Module]

// SetModule installs module as the target of the package-level Record helpers.
// A nil module is ignored.
func SetModule(module *Module) {
	if module != nil {
		current.Store(module)
	}
}

// CurrentModule returns the installed module, or nil.
func CurrentModule() *Module {
	return current.Load()
}

// withModule runs fn against the installed module; it is a no-op before SetModule.
func withModule(fn func(*Module)) {
	if module := current.Load(); module != nil {
		fn(module)
	}
}
