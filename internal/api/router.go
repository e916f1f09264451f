package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/app"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/handlers"
	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
)

// Dependencies are the long-lived services the HTTP surface is built on.
type Dependencies struct {
	Config       *app.Config
	DB           *gorm.DB
	JWT          *iauth.JWTService
	Admin        *iauth.AdminAuthenticator
	Audit        *services.AuditService
	Settings     *services.SettingsService
	Renderer     *widget.Renderer
	Sidebar      *widget.Sidebar
	Shortcodes   *widget.Shortcodes
	SettingsPage *widget.SettingsPage
	Monitoring   *monitoring.Module
	RateStore    middleware.RateStore
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return fmt.Errorf("config must be provided")
	case d.DB == nil:
		return fmt.Errorf("database handle must be provided")
	case d.JWT == nil:
		return fmt.Errorf("jwt service must be provided")
	case d.Admin == nil:
		return fmt.Errorf("admin authenticator must be provided")
	case d.Settings == nil || d.Audit == nil:
		return fmt.Errorf("settings and audit services must be provided")
	case d.Renderer == nil || d.Sidebar == nil || d.Shortcodes == nil || d.SettingsPage == nil:
		return fmt.Errorf("widget renderers must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	metricsPath := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery("/widget", "/shortcode/"))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(metricsPath))
	r.Use(middleware.SecurityHeaders("/widget", "/shortcode/"))
	r.Use(middleware.CORS("/widget", "/shortcode/", "/api/bmi", "/api/shortcodes/"))
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF(middleware.WithCSRFCookieTTL(cfg.Server.CSRF.CookieTTL)))
	}

	window := cfg.Server.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, window))

	registerHealthRoutes(r, cfg, deps.Monitoring)

	widgetHandler, err := handlers.NewWidgetHandler(deps.Settings, deps.Renderer, deps.Sidebar, deps.Shortcodes)
	if err != nil {
		return nil, err
	}
	bmiHandler, err := handlers.NewBMIHandler(deps.Settings, deps.Renderer)
	if err != nil {
		return nil, err
	}
	registerWidgetRoutes(r, widgetHandler, bmiHandler)

	authHandler, err := handlers.NewAuthHandler(deps.Admin)
	if err != nil {
		return nil, err
	}

	requireAdmin := []gin.HandlerFunc{middleware.Auth(deps.JWT), middleware.RequireRole(iauth.RoleAdmin)}

	api := r.Group("/api")
	registerAuthRoutes(api, authHandler, requireAdmin)

	protected := api.Group("")
	protected.Use(requireAdmin...)

	settingsHandler, err := handlers.NewSettingsHandler(deps.Settings, deps.SettingsPage, cfg.Widget.Locale)
	if err != nil {
		return nil, err
	}
	registerSettingsRoutes(r, protected, settingsHandler, requireAdmin)

	if err := registerAuditRoutes(protected, deps.Audit, deps.DB, deps.JWT, cfg); err != nil {
		return nil, err
	}
	protected.GET("/monitoring/summary", handlers.NewMonitoringHandler(deps.Monitoring, cfg).Summary)

	if cfg.Monitoring.Prometheus.Enabled && deps.Monitoring != nil {
		r.GET(metricsPath, gin.WrapH(deps.Monitoring.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
