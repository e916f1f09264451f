package monitoring

import (
	"strings"
	"time"
)

// RecordAuthAttempt counts an admin login attempt by result.
func RecordAuthAttempt(result string) {
	withModule(func(m *Module) {
		label := normalizeLabel(result)
		m.metrics.authAttempts.WithLabelValues(label).Inc()
		m.stats.recordAuth(label)
	})
}

// ObserveAPILatency records request latency for a route template.
func ObserveAPILatency(method, path, status string, duration time.Duration) {
	withModule(func(m *Module) {
		method = strings.ToUpper(strings.TrimSpace(method))
		if method == "" {
			method = "UNKNOWN"
		}
		m.metrics.apiLatency.
			WithLabelValues(method, routeLabel(path), normalizeLabel(status)).
			Observe(max(duration, 0).Seconds())
	})
}

// RecordComputation counts a BMI computation. classification is the band slug,
// "none" for unconfigured measurements.
func RecordComputation(source, classification string) {
	withModule(func(m *Module) {
		class := normalizeLabel(classification)
		m.metrics.computations.WithLabelValues(normalizeLabel(source), class).Inc()
		m.stats.recordComputation(class)
	})
}

// RecordRender counts a widget or shortcode render. result is "configured",
// "unconfigured" or "error".
func RecordRender(surface, result string) {
	withModule(func(m *Module) {
		surface = normalizeLabel(surface)
		m.metrics.renders.WithLabelValues(surface, normalizeLabel(result)).Inc()
		m.stats.recordRender(surface)
	})
}

// RecordSettingsUpdate tracks a settings save. bmi is only kept on success.
func RecordSettingsUpdate(result string, bmi float64) {
	withModule(func(m *Module) {
		label := normalizeLabel(result)
		m.metrics.settingsUpdates.WithLabelValues(label).Inc()
		if label == "success" {
			m.metrics.lastBMI.Set(bmi)
		}
		m.stats.recordSettingsUpdate(label)
	})
}

// RecordMaintenanceRun records the completion of a cleanup job.
func RecordMaintenanceRun(job, result, message string, duration time.Duration) {
	withModule(func(m *Module) {
		job = normalizeLabel(job)
		result = normalizeLabel(result)
		m.metrics.maintenanceRuns.WithLabelValues(job, result).Inc()
		observeDuration(m.metrics.maintenanceDuration.WithLabelValues(job), duration)
		if result == "success" {
			m.metrics.maintenanceLastRun.WithLabelValues(job).SetToCurrentTime()
		}
		m.stats.recordMaintenance(job, result, strings.TrimSpace(message), duration)
	})
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}

// routeLabel turns "/api/bmi/compute" into "api/bmi/compute"; the site root
// becomes "root" and an empty path "unknown".
func routeLabel(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "unknown"
	}
	path = strings.ReplaceAll(strings.Trim(path, "/"), " ", "_")
	if path == "" {
		return "root"
	}
	return path
}
