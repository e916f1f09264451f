package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/app"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/handlers"
	"github.com/fropcore/bmiwidget/internal/security"
	"github.com/fropcore/bmiwidget/internal/services"
)

func registerAuditRoutes(api *gin.RouterGroup, svc *services.AuditService, db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) error {
	auditHandler, err := handlers.NewAuditHandler(svc)
	if err != nil {
		return err
	}

	securityHandler, err := handlers.NewSecurityHandler(security.NewAuditService(db, jwt, cfg))
	if err != nil {
		return err
	}

	api.GET("/security/audit", securityHandler.Audit)
	api.GET("/audit", auditHandler.List)
	return nil
}
