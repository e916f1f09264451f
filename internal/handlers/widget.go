package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// Render surfaces reported to monitoring.
const (
	surfaceWidget    = "widget"
	surfaceShortcode = "shortcode"
)

// WidgetHandler serves the public HTML fragments.
type WidgetHandler struct {
	settings   *services.SettingsService
	renderer   *widget.Renderer
	sidebar    *widget.Sidebar
	shortcodes *widget.Shortcodes
}

// NewWidgetHandler wires the renderers to the settings store.
func NewWidgetHandler(settings *services.SettingsService, renderer *widget.Renderer, sidebar *widget.Sidebar, shortcodes *widget.Shortcodes) (*WidgetHandler, error) {
	if settings == nil || renderer == nil || sidebar == nil || shortcodes == nil {
		return nil, errors.New("widget handler: settings, renderer, sidebar and shortcodes are required")
	}
	return &WidgetHandler{settings: settings, renderer: renderer, sidebar: sidebar, shortcodes: shortcodes}, nil
}

type expandRequest struct {
	Content string `json:"content" validate:"max=65536"`
}

// GET /widget
func (h *WidgetHandler) Sidebar(c *gin.Context) {
	settings, ok := h.loadSettings(c, surfaceWidget)
	if !ok {
		return
	}

	markup, err := h.sidebar.Render(requestContext(c), settings)
	if err != nil {
		h.renderFailed(c, surfaceWidget, err)
		return
	}

	h.recordRender(surfaceWidget, settings)
	response.HTML(c, http.StatusOK, markup)
}

// GET /shortcode/:tag
func (h *WidgetHandler) Shortcode(c *gin.Context) {
	tag := strings.TrimSpace(c.Param("tag"))
	if _, ok := h.shortcodes.Lookup(tag); !ok {
		response.Error(c, appErrors.ErrUnknownShortcode)
		return
	}

	settings, ok := h.loadSettings(c, surfaceShortcode)
	if !ok {
		return
	}

	markup, err := h.shortcodes.Render(requestContext(c), tag, settings)
	if err != nil {
		h.renderFailed(c, surfaceShortcode, err)
		return
	}

	h.recordRender(surfaceShortcode, settings)
	response.HTML(c, http.StatusOK, markup)
}

// POST /api/shortcodes/render
func (h *WidgetHandler) Expand(c *gin.Context) {
	var req expandRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, ok := h.loadSettings(c, surfaceShortcode)
	if !ok {
		return
	}

	content, err := h.shortcodes.Expand(requestContext(c), req.Content, settings)
	if err != nil {
		h.renderFailed(c, surfaceShortcode, err)
		return
	}

	if content != req.Content {
		h.recordRender(surfaceShortcode, settings)
	}
	response.Success(c, http.StatusOK, gin.H{"content": content})
}

func (h *WidgetHandler) loadSettings(c *gin.Context, surface string) (services.MeasurementSettings, bool) {
	settings, err := h.settings.Get(requestContext(c))
	if err != nil {
		h.renderFailed(c, surface, err)
		return services.MeasurementSettings{}, false
	}
	return settings, true
}

func (h *WidgetHandler) recordRender(surface string, settings services.MeasurementSettings) {
	result := h.renderer.Compute(settings)
	state := "configured"
	if !result.Valid() {
		state = "unconfigured"
	}
	monitoring.RecordRender(surface, state)
	monitoring.RecordComputation(surface, result.Classification.Slug())
}

func (h *WidgetHandler) renderFailed(c *gin.Context, surface string, err error) {
	monitoring.RecordRender(surface, "error")
	logger.WithModule("widget").Warn("render failed", zap.String("surface", surface), zap.Error(err))
	response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
}
