package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/handlers"
)

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler, requireAdmin []gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.Logout)
	}

	me := auth.Group("")
	me.Use(requireAdmin...)
	me.GET("/me", handler.Me)
}
