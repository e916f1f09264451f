package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/app"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/pkg/response"
)

const defaultMetricsEndpoint = "/metrics"

// MonitoringHandler gives the admin a one-call view of widget traffic, login
// attempts, maintenance runs and readiness.
type MonitoringHandler struct {
	module          *monitoring.Module
	metricsEnabled  bool
	metricsEndpoint string
	healthEnabled   bool
}

// MonitoringSummary is the payload of GET /api/monitoring/summary.
type MonitoringSummary struct {
	Summary    monitoring.Summary       `json:"summary"`
	Prometheus PrometheusInfo           `json:"prometheus"`
	Readiness  *monitoring.HealthReport `json:"readiness,omitempty"`
}

// PrometheusInfo tells the admin where metrics are scraped from.
type PrometheusInfo struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
}

// NewMonitoringHandler returns nil when there is no module or when both
// metrics and health reporting are switched off.
func NewMonitoringHandler(module *monitoring.Module, cfg *app.Config) *MonitoringHandler {
	if module == nil || cfg == nil {
		return nil
	}
	mon := cfg.Monitoring
	if !mon.Health.Enabled && !mon.Prometheus.Enabled {
		return nil
	}

	endpoint := strings.TrimSpace(mon.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = defaultMetricsEndpoint
	}
	return &MonitoringHandler{
		module:          module,
		metricsEnabled:  mon.Prometheus.Enabled,
		metricsEndpoint: endpoint,
		healthEnabled:   mon.Health.Enabled,
	}
}

// GET /api/monitoring/summary
func (h *MonitoringHandler) Summary(c *gin.Context) {
	payload := MonitoringSummary{
		Summary:    monitoring.Snapshot(),
		Prometheus: PrometheusInfo{Enabled: h.metricsEnabled, Endpoint: h.metricsEndpoint},
	}
	if h.healthEnabled {
		if health := h.module.Health(); health != nil {
			report := health.EvaluateReadiness(requestContext(c))
			payload.Readiness = &report
		}
	}
	response.Success(c, http.StatusOK, payload)
}
