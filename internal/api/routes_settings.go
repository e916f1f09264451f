package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/handlers"
)

func registerSettingsRoutes(r *gin.Engine, api *gin.RouterGroup, handler *handlers.SettingsHandler, requireAdmin []gin.HandlerFunc) {
	api.GET("/settings", handler.Get)
	api.PUT("/settings", handler.Update)

	admin := r.Group(handlers.SettingsPagePath)
	admin.Use(requireAdmin...)
	{
		admin.GET("", handler.Page)
		admin.POST("", handler.Submit)
	}
}
