package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fropcore/bmiwidget/internal/cache"
	testutil "github.com/fropcore/bmiwidget/internal/database/testutil"
	"github.com/fropcore/bmiwidget/internal/models"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/services"
)

func setupMonitoring(t *testing.T) {
	t.Helper()
	mod, err := monitoring.NewModule(monitoring.Options{DisableProcessCollector: true})
	require.NoError(t, err)
	monitoring.SetModule(mod)
}

func findJob(jobs []monitoring.MaintenanceJobSummary, name string) (monitoring.MaintenanceJobSummary, bool) {
	for _, job := range jobs {
		if job.Job == name {
			return job, true
		}
	}
	return monitoring.MaintenanceJobSummary{}, false
}

func TestCleanerRunOnce(t *testing.T) {
	setupMonitoring(t)
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	ctx := context.Background()

	auditSvc, err := services.NewAuditService(db)
	require.NoError(t, err)
	store := cache.NewDatabaseStore(db)

	require.NoError(t, auditSvc.Log(ctx, services.AuditEntry{
		Actor:  "admin",
		Action: "settings.update",
		Result: services.AuditResultSuccess,
	}))
	var stale models.AuditLog
	require.NoError(t, db.First(&stale).Error)
	require.NoError(t, db.Model(&stale).Update("created_at", time.Now().AddDate(0, 0, -10)).Error)

	require.NoError(t, auditSvc.Log(ctx, services.AuditEntry{
		Actor:  "admin",
		Action: "settings.update",
		Result: services.AuditResultSuccess,
	}))

	require.NoError(t, db.Create(&models.CacheEntry{Key: "ratelimit:old", Value: []byte("3"), ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, store.Set(ctx, "ratelimit:live", []byte("1"), time.Hour))

	c := NewCleaner(auditSvc, store,
		WithAuditRetentionDays(7),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, c.RunOnce(ctx))

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&auditCount).Error)
	require.Equal(t, int64(1), auditCount)

	var cacheCount int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&cacheCount).Error)
	require.Equal(t, int64(1), cacheCount)
	_, ok, err := store.Get(ctx, "ratelimit:live")
	require.NoError(t, err)
	require.True(t, ok)

	summary := monitoring.Snapshot()
	audit, ok := findJob(summary.Maintenance.Jobs, JobAuditRetention)
	require.True(t, ok)
	require.Equal(t, uint64(1), audit.TotalRuns)
	require.Equal(t, "success", audit.LastStatus)
	sweep, ok := findJob(summary.Maintenance.Jobs, JobCacheSweep)
	require.True(t, ok)
	require.Equal(t, uint64(1), sweep.TotalRuns)
}

type failingSweeper struct{ err error }

func (f failingSweeper) DeleteExpired(context.Context) (int64, error) { return 0, f.err }

func TestCleanerRunOnceCollectsErrors(t *testing.T) {
	setupMonitoring(t)
	boom := errors.New("sweep failed")

	c := NewCleaner(nil, failingSweeper{err: boom})
	err := c.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)

	job, ok := findJob(monitoring.Snapshot().Maintenance.Jobs, JobCacheSweep)
	require.True(t, ok)
	require.Equal(t, "failure", job.LastStatus)
	require.Equal(t, "sweep failed", job.LastError)
	require.Equal(t, uint64(1), job.ConsecutiveFailures)
}

func TestCleanerWithoutJobsIsNoop(t *testing.T) {
	c := NewCleaner(nil, nil)
	require.NoError(t, c.Start())
	require.NoError(t, c.RunOnce(context.Background()))
	<-c.Stop().Done()
}

func TestCleanerRejectsInvalidSchedule(t *testing.T) {
	c := NewCleaner(nil, failingSweeper{}, WithCacheSchedule("not a schedule"))
	require.Error(t, c.Start())
}

func TestCleanerStartStopDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := NewCleaner(nil, failingSweeper{}, WithCacheSchedule("@every 1h"))
	require.NoError(t, c.Start())
	<-c.Stop().Done()
}

func TestCronLoggerForwardsToZap(t *testing.T) {
	core, recorded := observer.New(zap.DebugLevel)
	clog := cronLogger{log: zap.New(core)}

	clog.Info("schedule", "entry", 1)
	clog.Error(errors.New("panic in job"), "panic", "job", JobCacheSweep)

	entries := recorded.All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.DebugLevel, entries[0].Level)
	require.Equal(t, zap.ErrorLevel, entries[1].Level)
	require.Equal(t, JobCacheSweep, entries[1].ContextMap()["job"])
	require.Equal(t, "panic in job", entries[1].ContextMap()["error"])
}
