package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fropcore/bmiwidget/internal/monitoring"
)

// DefaultMaintenanceMaxAge is how long a cleanup job may go without running
// before readiness degrades.
const DefaultMaintenanceMaxAge = 6 * time.Hour

// Maintenance reports on the audit retention and cache sweep jobs. A job that
// keeps failing marks the service down; a job that has not run within maxAge
// marks it degraded. Jobs that have not run yet are listed but do not count.
func Maintenance(maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = DefaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.ProbeResult {
		jobs := monitoring.Snapshot().Maintenance.Jobs
		if len(jobs) == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no maintenance jobs registered"}
		}

		now := time.Now()
		status := monitoring.StatusUp
		notes := make([]string, 0, len(jobs))
		for _, job := range jobs {
			jobStatus, note := evaluateJob(job, now, maxAge)
			status = status.Worse(jobStatus)
			if note != "" {
				notes = append(notes, job.Job+": "+note)
			}
		}

		return monitoring.ProbeResult{Status: status, Details: strings.Join(notes, "; ")}
	})
}

func evaluateJob(job monitoring.MaintenanceJobSummary, now time.Time, maxAge time.Duration) (monitoring.ProbeStatus, string) {
	switch {
	case job.TotalRuns == 0:
		return monitoring.StatusUp, "pending first run"
	case job.ConsecutiveFailures > 0:
		note := fmt.Sprintf("%d consecutive failures", job.ConsecutiveFailures)
		if job.LastError != "" {
			note += " (" + job.LastError + ")"
		}
		return monitoring.StatusDown, note
	case !job.LastRunAt.IsZero() && now.Sub(job.LastRunAt) > maxAge:
		return monitoring.StatusDegraded, "last run " + job.LastRunAt.UTC().Format(time.RFC3339)
	default:
		return monitoring.StatusUp, ""
	}
}
