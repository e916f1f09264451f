// Package maintenance schedules the housekeeping the widget needs: pruning the
// settings audit trail and sweeping lapsed rate limit and lockout counters.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/internal/cache"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/pkg/logger"
)

// Job names reported to monitoring.
const (
	JobAuditRetention = "audit_retention"
	JobCacheSweep     = "cache_sweep"
)

const (
	DefaultAuditRetentionDays = 90
	DefaultAuditSchedule      = "@daily"
	DefaultCacheSchedule      = "@hourly"
)

type job struct {
	name string
	spec string
	run  func(ctx context.Context) (removed int64, err error)
}

// Cleaner runs the maintenance jobs on a cron schedule, or all at once via
// RunOnce.
type Cleaner struct {
	audit   *services.AuditService
	sweeper cache.Sweeper
	cron    *cron.Cron
	now     func() time.Time
	log     *zap.Logger

	retentionDays int
	auditSpec     string
	cacheSpec     string
}

type Option func(*Cleaner)

// WithCron replaces the scheduler, mainly so tests control it.
func WithCron(c *cron.Cron) Option {
	return func(cl *Cleaner) {
		if c != nil {
			cl.cron = c
		}
	}
}

// WithNow replaces the clock used to time runs.
func WithNow(now func() time.Time) Option {
	return func(cl *Cleaner) {
		if now != nil {
			cl.now = now
		}
	}
}

// WithAuditRetentionDays sets how many days of audit history survive a prune.
func WithAuditRetentionDays(days int) Option {
	return func(cl *Cleaner) {
		if days > 0 {
			cl.retentionDays = days
		}
	}
}

func WithAuditSchedule(spec string) Option {
	return func(cl *Cleaner) {
		if spec != "" {
			cl.auditSpec = spec
		}
	}
}

func WithCacheSchedule(spec string) Option {
	return func(cl *Cleaner) {
		if spec != "" {
			cl.cacheSpec = spec
		}
	}
}

// NewCleaner builds a Cleaner. Each nil dependency drops its job.
func NewCleaner(audit *services.AuditService, sweeper cache.Sweeper, opts ...Option) *Cleaner {
	cl := &Cleaner{
		audit:         audit,
		sweeper:       sweeper,
		now:           time.Now,
		log:           logger.WithModule("maintenance"),
		retentionDays: DefaultAuditRetentionDays,
		auditSpec:     DefaultAuditSchedule,
		cacheSpec:     DefaultCacheSchedule,
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.cron == nil {
		clog := cronLogger{cl.log}
		cl.cron = cron.New(
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		)
	}
	return cl
}

func (c *Cleaner) jobs() []job {
	var jobs []job
	if c.audit != nil {
		jobs = append(jobs, job{name: JobAuditRetention, spec: c.auditSpec, run: func(ctx context.Context) (int64, error) {
			return c.audit.CleanupOlderThan(ctx, c.retentionDays)
		}})
	}
	if c.sweeper != nil {
		jobs = append(jobs, job{name: JobCacheSweep, spec: c.cacheSpec, run: c.sweeper.DeleteExpired})
	}
	return jobs
}

// Start schedules every enabled job and starts the scheduler. With no jobs it
// does nothing. A bad schedule spec is returned before anything runs.
func (c *Cleaner) Start() error {
	jobs := c.jobs()
	if len(jobs) == 0 {
		return nil
	}
	for _, j := range jobs {
		if _, err := c.cron.AddFunc(j.spec, func() { _ = c.exec(context.Background(), j) }); err != nil {
			return err
		}
	}
	c.cron.Start()
	return nil
}

// Stop halts scheduling. The returned context is done once in-flight jobs
// have returned.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce runs every enabled job in turn and returns all their errors
// combined.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs error
	for _, j := range c.jobs() {
		errs = multierr.Append(errs, c.exec(ctx, j))
	}
	return errs
}

func (c *Cleaner) exec(ctx context.Context, j job) error {
	start := c.now()
	removed, err := j.run(ctx)
	elapsed := c.now().Sub(start)

	if err != nil {
		c.log.Warn("maintenance job failed", zap.String("job", j.name), zap.Error(err))
		monitoring.RecordMaintenanceRun(j.name, "failure", err.Error(), elapsed)
		return err
	}
	if removed > 0 {
		c.log.Info("maintenance job removed rows", zap.String("job", j.name), zap.Int64("removed", removed))
	}
	monitoring.RecordMaintenanceRun(j.name, "success", "", elapsed)
	return nil
}

// cronLogger routes the scheduler's own messages into zap.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
