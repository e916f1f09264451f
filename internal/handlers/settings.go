package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// SettingsPagePath is where the HTML settings form lives.
const SettingsPagePath = "/admin/settings"

// SettingsHandler manages the measurement record over JSON and the HTML form.
type SettingsHandler struct {
	svc  *services.SettingsService
	page *widget.SettingsPage
	lang string
}

// NewSettingsHandler constructs a SettingsHandler. lang sets the page's html lang attribute.
func NewSettingsHandler(svc *services.SettingsService, page *widget.SettingsPage, lang string) (*SettingsHandler, error) {
	if svc == nil || page == nil {
		return nil, errors.New("settings handler: service and page are required")
	}
	return &SettingsHandler{svc: svc, page: page, lang: lang}, nil
}

// looseString accepts a JSON string, number, bool or null and keeps its text,
// so JSON saves go through the same sanitizer as form posts.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case bytes.Equal(data, []byte("true")):
		*s = "1"
	case bytes.Equal(data, []byte("false")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		*s = looseString(num.String())
	}
	return nil
}

type updateSettingsRequest struct {
	Weight      looseString `json:"weight"`
	WeightUnit  looseString `json:"weight_unit"`
	Height      looseString `json:"height"`
	HeightUnit  looseString `json:"height_unit"`
	ShowUpdated looseString `json:"show_updated"`
	CustomLabel looseString `json:"custom_label" validate:"max=1024"`
}

func (r updateSettingsRequest) input() services.SettingsInput {
	return services.SettingsInput{
		Weight:      string(r.Weight),
		WeightUnit:  string(r.WeightUnit),
		Height:      string(r.Height),
		HeightUnit:  string(r.HeightUnit),
		ShowUpdated: string(r.ShowUpdated),
		CustomLabel: string(r.CustomLabel),
	}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.svc.Get(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.svc.Update(requestContext(c), requestActor(c), req.input())
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// GET /admin/settings
func (h *SettingsHandler) Page(c *gin.Context) {
	settings, err := h.svc.Get(requestContext(c))
	if err != nil {
		h.renderPage(c, http.StatusInternalServerError, services.DefaultMeasurementSettings(), "Settings could not be loaded.")
		logger.WithModule("settings").Error("load settings page", zap.Error(err))
		return
	}
	h.renderPage(c, http.StatusOK, settings, "")
}

// POST /admin/settings
func (h *SettingsHandler) Submit(c *gin.Context) {
	var input services.SettingsInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderPage(c, http.StatusBadRequest, services.DefaultMeasurementSettings(), "The form could not be read.")
		return
	}

	if _, err := h.svc.Update(requestContext(c), requestActor(c), input); err != nil {
		logger.WithModule("settings").Error("save settings", zap.Error(err))
		h.renderPage(c, http.StatusInternalServerError, services.SanitizeSettings(input, time.Now()), "Settings could not be saved.")
		return
	}

	c.Redirect(http.StatusSeeOther, SettingsPagePath+"?updated=1")
}

func (h *SettingsHandler) renderPage(c *gin.Context, status int, settings services.MeasurementSettings, errMessage string) {
	updated, _ := strconv.ParseBool(c.Query("updated"))
	markup, err := h.page.Render(widget.SettingsPageData{
		Settings:  settings,
		Action:    SettingsPagePath,
		CSRFToken: middleware.CSRFToken(c),
		Updated:   updated && errMessage == "",
		Error:     errMessage,
		Lang:      h.lang,
	})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	c.Header("Cache-Control", "no-store")
	response.HTML(c, status, markup)
}
