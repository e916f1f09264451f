package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/handlers"
)

func registerWidgetRoutes(r *gin.Engine, widget *handlers.WidgetHandler, bmi *handlers.BMIHandler) {
	r.GET("/widget", widget.Sidebar)
	r.GET("/shortcode/:tag", widget.Shortcode)

	api := r.Group("/api")
	{
		api.POST("/shortcodes/render", widget.Expand)
		api.GET("/bmi", bmi.Current)
		api.POST("/bmi/compute", bmi.Compute)
	}
}
