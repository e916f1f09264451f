package monitoring

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// statStore keeps the counters behind Snapshot. Prometheus holds the same
// numbers, but reading them back out of a registry is awkward, so the admin
// summary is fed from here.
type statStore struct {
	mu    sync.Mutex
	clock func() time.Time

	auth         AuthSummary
	computations map[string]uint64
	renders      map[string]uint64
	settings     SettingsSummary
	jobs         map[string]*MaintenanceJobSummary
}

func newStatStore() *statStore {
	return &statStore{
		clock:        time.Now,
		computations: map[string]uint64{},
		renders:      map[string]uint64{},
		jobs:         map[string]*MaintenanceJobSummary{},
	}
}

func (s *statStore) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, n := range s.computations {
		total += n
	}

	jobs := make([]MaintenanceJobSummary, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	slices.SortFunc(jobs, func(a, b MaintenanceJobSummary) int { return strings.Compare(a.Job, b.Job) })

	return Summary{
		GeneratedAt:  s.clock(),
		Auth:         s.auth,
		Computations: ComputationSummary{Total: total, ByClassification: maps.Clone(s.computations)},
		Renders:      maps.Clone(s.renders),
		Settings:     s.settings,
		Maintenance:  MaintenanceSummary{Jobs: jobs},
	}
}

func (s *statStore) recordAuth(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch result {
	case "success":
		s.auth.Success++
	case "failure":
		s.auth.Failure++
	default:
		s.auth.Error++
	}
}

func (s *statStore) recordComputation(classification string) {
	s.mu.Lock()
	s.computations[classification]++
	s.mu.Unlock()
}

func (s *statStore) recordRender(surface string) {
	s.mu.Lock()
	s.renders[surface]++
	s.mu.Unlock()
}

func (s *statStore) recordSettingsUpdate(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result != "success" {
		s.settings.Failures++
		return
	}
	s.settings.Updates++
	s.settings.LastUpdated = s.clock()
}

// recordMaintenance folds one job run into its running summary. Any result
// other than "success" counts as a failure.
func (s *statStore) recordMaintenance(job, result, message string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.jobs[job]
	if entry == nil {
		entry = &MaintenanceJobSummary{Job: job}
		s.jobs[job] = entry
	}

	now := s.clock()
	entry.TotalRuns++
	entry.LastStatus = result
	entry.LastError = message
	entry.LastRunAt = now
	entry.LastDuration = max(duration, 0)

	if result == "success" {
		entry.LastSuccessAt = now
		entry.ConsecutiveSuccess++
		entry.ConsecutiveFailures = 0
		return
	}
	entry.ConsecutiveFailures++
	entry.ConsecutiveSuccess = 0
}
