package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/app"
	"github.com/fropcore/bmiwidget/internal/handlers"
	"github.com/fropcore/bmiwidget/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if cfg == nil {
		return
	}

	var handler *handlers.HealthHandler
	if cfg.Monitoring.Health.Enabled && mon != nil {
		handler = handlers.NewHealthHandler(mon.Health())
	}

	if handler == nil {
		r.GET("/health", handlers.HealthDisabled)
		r.GET("/health/live", handlers.HealthDisabled)
		r.GET("/health/ready", handlers.HealthDisabled)
		return
	}

	r.GET("/health", handler.Summary)
	r.GET("/health/live", handler.Live)
	r.GET("/health/ready", handler.Ready)
}
