// Package testutil spins up the full HTTP stack over an in-memory database for
// handler integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/api"
	"github.com/fropcore/bmiwidget/internal/app"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/cache"
	sharedtestutil "github.com/fropcore/bmiwidget/internal/database/testutil"
	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/monitoring/checks"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// Admin credentials accepted by every Env.
const (
	AdminUsername = "admin"
	AdminPassword = "Secret123!"

	testSecret = "bmiwidget-handler-tests-signing-key-0001"
)

// Env is one wired router plus the services behind it.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Router     *gin.Engine
	JWT        *iauth.JWTService
	Settings   *services.SettingsService
	Audit      *services.AuditService
	Monitoring *monitoring.Module
	Config     *app.Config

	csrf *http.Cookie
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(*app.Config)

func defaultConfig(t *testing.T) *app.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Server.CSRF.Enabled = true
	cfg.Server.RateLimit = app.RateLimitConfig{Requests: 1000, Window: time.Minute}
	cfg.Auth.JWT = app.JWTSettings{Secret: testSecret, Issuer: "bmiwidget-tests", TTL: time.Hour}
	cfg.Auth.Admin = app.AdminSettings{Username: AdminUsername, PasswordHash: string(hash)}
	cfg.Widget = app.WidgetConfig{Locale: "en", Title: widget.DefaultTitle}
	cfg.Monitoring.Prometheus = app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"}
	cfg.Monitoring.Health.Enabled = true
	return cfg
}

// NewEnv migrates and seeds a fresh database and builds the router on top.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := defaultConfig(t)
	for _, opt := range opts {
		opt(cfg)
	}

	env := &Env{
		T:      t,
		Config: cfg,
		DB:     sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData()),
	}
	store := cache.NewDatabaseStore(env.DB)

	var err error
	env.JWT, err = iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	adminCfg := cfg.Auth.AdminConfig()
	adminCfg.LockoutThreshold = 3
	admin, err := iauth.NewAdminAuthenticator(adminCfg, env.JWT, store)
	require.NoError(t, err)

	env.Audit, err = services.NewAuditService(env.DB)
	require.NoError(t, err)
	env.Settings, err = services.NewSettingsService(env.DB, env.Audit)
	require.NoError(t, err)

	renderer, err := widget.NewRenderer(widget.Options{Locale: cfg.Widget.Locale, Location: time.UTC})
	require.NoError(t, err)
	page, err := widget.NewSettingsPage()
	require.NoError(t, err)

	env.Monitoring, err = monitoring.NewModule(monitoring.Options{DisableGoCollector: true, DisableProcessCollector: true})
	require.NoError(t, err)
	env.Monitoring.Health().RegisterReadiness(checks.Database(env.DB, 0))
	monitoring.SetModule(env.Monitoring)

	env.Router, err = api.NewRouter(api.Dependencies{
		Config:       cfg,
		DB:           env.DB,
		JWT:          env.JWT,
		Admin:        admin,
		Audit:        env.Audit,
		Settings:     env.Settings,
		Renderer:     renderer,
		Sidebar:      widget.NewSidebar(renderer, widget.SidebarOptions{Title: cfg.Widget.Title}),
		Shortcodes:   widget.DefaultShortcodes(renderer),
		SettingsPage: page,
		Monitoring:   env.Monitoring,
		RateStore:    middleware.NewDatabaseRateStore(store),
	})
	require.NoError(t, err)
	return env
}

// LoginResult is the data block of a successful POST /api/auth/login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int       `json:"expires_in"`
}

// Login must succeed; it fails the test otherwise.
func (e *Env) Login(username, password string) LoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var out LoginResult
	DecodeInto(e.T, resp.Data, &out)
	require.NotEmpty(e.T, out.AccessToken)
	require.Positive(e.T, out.ExpiresIn)
	return out
}

// AdminToken logs in with the default credentials.
func (e *Env) AdminToken() string {
	e.T.Helper()
	return e.Login(AdminUsername, AdminPassword).AccessToken
}

// APIResponse mirrors the JSON envelope written by pkg/response.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var out APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	require.NotNil(t, dest)
	require.NoError(t, json.Unmarshal(raw, dest))
}

type decorator func(*http.Request)

func header(key, value string) decorator {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func cookie(c *http.Cookie) decorator {
	return func(r *http.Request) { r.AddCookie(c) }
}

// Request sends body as JSON. A non-empty token becomes a bearer header.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var (
		payload []byte
		extra   []decorator
	)
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(e.T, err)
		extra = append(extra, header("Content-Type", "application/json"))
	}
	if token != "" {
		extra = append(extra, header("Authorization", "Bearer "+token))
	}
	return e.do(method, path, bytes.NewReader(payload), extra...)
}

// Browser performs a request the way the settings page does: the token rides in
// the auth cookie and form posts carry the CSRF token unless skipCSRF is set.
func (e *Env) Browser(method, path string, form url.Values, token string, skipCSRF bool) *httptest.ResponseRecorder {
	e.T.Helper()

	if method != http.MethodGet && !skipCSRF {
		if form == nil {
			form = url.Values{}
		}
		form.Set(middleware.CSRFFormField, e.csrfToken())
	}

	var extra []decorator
	if form != nil {
		extra = append(extra, header("Content-Type", "application/x-www-form-urlencoded"))
	}
	if token != "" {
		extra = append(extra, cookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token}))
	}
	if e.csrf != nil {
		extra = append(extra, cookie(e.csrf))
	}
	return e.do(method, path, bytes.NewBufferString(form.Encode()), extra...)
}

func (e *Env) do(method, path string, body io.Reader, extra ...decorator) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for _, apply := range extra {
		apply(req)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	e.rememberCSRF(w)
	return w
}

// csrfToken returns the double-submit value, fetching a page first when no
// cookie has been seen yet.
func (e *Env) csrfToken() string {
	if e.csrf == nil {
		w := e.do(http.MethodGet, "/health/live", nil)
		require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(e.T, e.csrf, "no csrf cookie issued")
	}
	return e.csrf.Value
}

func (e *Env) rememberCSRF(w *httptest.ResponseRecorder) {
	resp := w.Result()
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == middleware.CSRFCookieName && c.Value != "" {
			e.csrf = &http.Cookie{Name: c.Name, Value: c.Value}
			return
		}
	}
}
