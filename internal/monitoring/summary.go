package monitoring

import "time"

// Summary surfaces aggregated monitoring data for the admin dashboard.
type Summary struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Auth         AuthSummary        `json:"auth"`
	Computations ComputationSummary `json:"computations"`
	Renders      map[string]uint64  `json:"renders"`
	Settings     SettingsSummary    `json:"settings"`
	Maintenance  MaintenanceSummary `json:"maintenance"`
}

type AuthSummary struct {
	Success uint64 `json:"success"`
	Failure uint64 `json:"failure"`
	Error   uint64 `json:"error"`
}

// ComputationSummary counts computations per classification slug.
type ComputationSummary struct {
	Total            uint64            `json:"total"`
	ByClassification map[string]uint64 `json:"by_classification"`
}

type SettingsSummary struct {
	Updates     uint64    `json:"updates"`
	Failures    uint64    `json:"failures"`
	LastUpdated time.Time `json:"last_updated"`
}

type MaintenanceSummary struct {
	Jobs []MaintenanceJobSummary `json:"jobs"`
}

type MaintenanceJobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	if module := CurrentModule(); module != nil && module.stats != nil {
		return module.stats.summary()
	}
	return Summary{GeneratedAt: time.Now()}
}
