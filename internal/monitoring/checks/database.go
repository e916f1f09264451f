package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/database"
	"github.com/fropcore/bmiwidget/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database pings the handle and confirms the widget option rows are readable.
// A reachable database without seeded options reports degraded: the widget
// would still render, but only the setup message.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultDatabaseTimeout
	}

	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(probeCtx)
		}
		if err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		options, err := database.GetOptionGroup(probeCtx, db, database.WidgetOptionKey)
		if err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		result := monitoring.ProbeResult{Status: monitoring.StatusUp, Duration: time.Since(start)}
		switch {
		case len(options) == 0:
			result.Status = monitoring.StatusDegraded
			result.Details = "widget options missing; run migrations"
		case options["updated_at"] == "":
			result.Details = "measurements not saved yet"
		}
		return result
	})
}
