package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/api"
	"github.com/fropcore/bmiwidget/internal/app"
	"github.com/fropcore/bmiwidget/internal/app/maintenance"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/cache"
	"github.com/fropcore/bmiwidget/internal/database"
	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/monitoring/checks"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
	"github.com/fropcore/bmiwidget/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// runtimeStack is everything the HTTP server holds for its lifetime.
type runtimeStack struct {
	DB          *gorm.DB
	Monitoring  *monitoring.Module
	AuditSvc    *services.AuditService
	SettingsSvc *services.SettingsService
	Cleaner     *maintenance.Cleaner
	RateStore   middleware.RateStore
	Router      *gin.Engine
}

// bootstrapRuntime wires the database, services, renderers, background jobs
// and router. On error whatever was already started is torn down again.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (stack *runtimeStack, err error) {
	stack = &runtimeStack{}
	defer func() {
		if err != nil {
			stack.Shutdown(context.Background(), log)
			stack = nil
		}
	}()

	if os.Getenv("GIN_DEBUG") != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	if stack.Monitoring, err = monitoring.NewModule(monitoring.Options{}); err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)

	if stack.DB, err = initialiseDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	store := cache.NewDatabaseStore(stack.DB)
	stack.RateStore = middleware.NewDatabaseRateStore(store)

	deps, err := buildServices(cfg, stack, store)
	if err != nil {
		return nil, err
	}

	stack.Cleaner = maintenance.NewCleaner(stack.AuditSvc, store,
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
	)
	if err = stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	health := stack.Monitoring.Health()
	health.RegisterReadiness(checks.Database(stack.DB, readinessTimeout))
	health.RegisterReadiness(checks.Maintenance(0))

	if stack.Router, err = api.NewRouter(deps); err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}
	return stack, nil
}

// buildServices constructs the auth, settings and rendering layers and returns
// the router dependencies that use them.
func buildServices(cfg *app.Config, stack *runtimeStack, store cache.Store) (api.Dependencies, error) {
	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise jwt service: %w", err)
	}
	admin, err := iauth.NewAdminAuthenticator(cfg.Auth.AdminConfig(), jwtSvc, store)
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise admin auth: %w", err)
	}

	if stack.AuditSvc, err = services.NewAuditService(stack.DB); err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise audit service: %w", err)
	}
	if stack.SettingsSvc, err = services.NewSettingsService(stack.DB, stack.AuditSvc); err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise settings service: %w", err)
	}

	renderer, err := widget.NewRenderer(widget.Options{
		Locale:     cfg.Widget.Locale,
		DateFormat: cfg.Widget.DateFormat,
		TimeFormat: cfg.Widget.TimeFormat,
	})
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise renderer: %w", err)
	}
	settingsPage, err := widget.NewSettingsPage()
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("initialise settings page: %w", err)
	}

	return api.Dependencies{
		Config:       cfg,
		DB:           stack.DB,
		JWT:          jwtSvc,
		Admin:        admin,
		Audit:        stack.AuditSvc,
		Settings:     stack.SettingsSvc,
		Renderer:     renderer,
		Sidebar:      widget.NewSidebar(renderer, sidebarOptions(cfg.Widget)),
		Shortcodes:   widget.DefaultShortcodes(renderer),
		SettingsPage: settingsPage,
		Monitoring:   stack.Monitoring,
		RateStore:    stack.RateStore,
	}, nil
}

// Shutdown stops the scheduler, runs a final cleanup pass and closes the
// database. It is safe on a nil or partially built stack and on repeat calls.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if cl := s.Cleaner; cl != nil {
		s.Cleaner = nil
		select {
		case <-cl.Stop().Done():
		case <-ctx.Done():
		}
		if err := cl.RunOnce(ctx); err != nil {
			log.Warn("final maintenance pass failed", zap.Error(err))
		}
	}

	if db := s.DB; db != nil {
		s.DB = nil
		closeDatabase(db, log)
	}
}

func sidebarOptions(cfg app.WidgetConfig) widget.SidebarOptions {
	return widget.SidebarOptions{
		Title:        cfg.Title,
		BeforeWidget: cfg.BeforeWidget,
		AfterWidget:  cfg.AfterWidget,
		BeforeTitle:  cfg.BeforeTitle,
		AfterTitle:   cfg.AfterTitle,
	}
}

// initialiseDatabase opens the configured database, migrates it and seeds the
// widget options.
func initialiseDatabase(ctx context.Context, cfg *app.Config) (*gorm.DB, error) {
	log := logger.WithModule("database")
	dbCfg := convertDatabaseConfig(cfg)

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db.WithContext(ctx)); err != nil {
		closeDatabase(db, log)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log.Info("database ready", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// convertDatabaseConfig normalises the driver name and copies the matching
// server credentials. Unknown drivers pass through so Open can reject them.
func convertDatabaseConfig(cfg *app.Config) database.Config {
	out := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	servers := map[string]app.DBAuthConfig{
		"postgres":   cfg.Database.Postgres,
		"postgresql": cfg.Database.Postgres,
		"mysql":      cfg.Database.MySQL,
	}
	if out.Driver == "" {
		out.Driver = "sqlite"
	}
	creds, ok := servers[out.Driver]
	if !ok {
		return out
	}
	if out.Driver == "postgresql" {
		out.Driver = "postgres"
	}

	out.Host = strings.TrimSpace(creds.Host)
	out.Port = creds.Port
	out.Name = strings.TrimSpace(creds.Database)
	out.User = strings.TrimSpace(creds.Username)
	out.Password = strings.TrimSpace(creds.Password)
	out.Options = creds.Options
	return out
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		log.Warn("closing database failed", zap.Error(err))
	}
}
