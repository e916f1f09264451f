package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/internal/widget"
	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// BMIHandler exposes the calculator as JSON.
type BMIHandler struct {
	settings *services.SettingsService
	renderer *widget.Renderer
}

// NewBMIHandler constructs a BMIHandler.
func NewBMIHandler(settings *services.SettingsService, renderer *widget.Renderer) (*BMIHandler, error) {
	if settings == nil || renderer == nil {
		return nil, errors.New("bmi handler: settings and renderer are required")
	}
	return &BMIHandler{settings: settings, renderer: renderer}, nil
}

type computeRequest struct {
	Weight     float64 `json:"weight" validate:"gt=0,finite"`
	WeightUnit string  `json:"weight_unit" validate:"omitempty,oneof=kg lb"`
	Height     float64 `json:"height" validate:"gt=0,finite"`
	HeightUnit string  `json:"height_unit" validate:"omitempty,oneof=cm in"`
}

type bmiPayload struct {
	Configured         bool       `json:"configured"`
	BMI                float64    `json:"bmi,omitempty"`
	BMIFormatted       string     `json:"bmi_formatted,omitempty"`
	Classification     string     `json:"classification,omitempty"`
	ClassificationSlug string     `json:"classification_slug,omitempty"`
	DisplayWeight      string     `json:"display_weight,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// GET /api/bmi
func (h *BMIHandler) Current(c *gin.Context) {
	settings, err := h.settings.Get(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	result := h.renderer.Compute(settings)
	monitoring.RecordComputation("api", result.Classification.Slug())

	payload := h.payload(result)
	if result.Valid() && settings.UpdatedAt != nil {
		updated := settings.UpdatedAt.UTC()
		payload.UpdatedAt = &updated
	}
	response.Success(c, http.StatusOK, payload)
}

// POST /api/bmi/compute
func (h *BMIHandler) Compute(c *gin.Context) {
	var req computeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result := h.renderer.Calculator().Compute(bmi.Measurements{
		Weight:     req.Weight,
		WeightUnit: bmi.NormalizeWeightUnit(req.WeightUnit),
		Height:     req.Height,
		HeightUnit: bmi.NormalizeHeightUnit(req.HeightUnit),
	})
	monitoring.RecordComputation("api", result.Classification.Slug())

	response.Success(c, http.StatusOK, h.payload(result))
}

func (h *BMIHandler) payload(result bmi.Result) bmiPayload {
	if !result.Valid() {
		return bmiPayload{}
	}
	return bmiPayload{
		Configured:         true,
		BMI:                result.BMI,
		BMIFormatted:       h.renderer.Calculator().Numbers().Decimal1(result.BMI),
		Classification:     result.Classification.String(),
		ClassificationSlug: result.Classification.Slug(),
		DisplayWeight:      result.DisplayWeight,
	}
}
