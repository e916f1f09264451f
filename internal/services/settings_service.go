package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/database"
	"github.com/fropcore/bmiwidget/internal/monitoring"
)

// Audit identifiers for measurement changes.
const (
	AuditActionSettingsUpdate = "settings.update"
	SettingsResource          = database.WidgetOptionKey
)

// MeasurementSettings is the stored measurement record behind the widget.
type MeasurementSettings struct {
	Weight      float64        `json:"weight"`
	WeightUnit  bmi.WeightUnit `json:"weight_unit"`
	Height      float64        `json:"height"`
	HeightUnit  bmi.HeightUnit `json:"height_unit"`
	ShowUpdated bool           `json:"show_updated"`
	CustomLabel string         `json:"custom_label"`
	// UpdatedAt is nil until the first save.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DefaultMeasurementSettings returns the record a fresh install reads.
func DefaultMeasurementSettings() MeasurementSettings {
	return MeasurementSettings{
		WeightUnit: bmi.DefaultWeightUnit,
		HeightUnit: bmi.DefaultHeightUnit,
	}
}

// Measurements converts the record into calculator input.
func (m MeasurementSettings) Measurements() bmi.Measurements {
	measurements := bmi.Measurements{
		Weight:     m.Weight,
		WeightUnit: m.WeightUnit,
		Height:     m.Height,
		HeightUnit: m.HeightUnit,
	}
	if m.UpdatedAt != nil {
		measurements.UpdatedAt = *m.UpdatedAt
	}
	return measurements
}

// SettingsService reads and writes the measurement record.
type SettingsService struct {
	db    *gorm.DB
	audit *AuditService
	now   func() time.Time
}

// NewSettingsService constructs a SettingsService. audit may be nil.
func NewSettingsService(db *gorm.DB, audit *AuditService) (*SettingsService, error) {
	if db == nil {
		return nil, errors.New("settings service: db is required")
	}
	return &SettingsService{db: db, audit: audit, now: time.Now}, nil
}

// Get loads the record. Missing fields read as their defaults.
func (s *SettingsService) Get(ctx context.Context) (MeasurementSettings, error) {
	ctx = ensureContext(ctx)

	values, err := database.GetOptionGroup(ctx, s.db, database.WidgetOptionKey)
	if err != nil {
		return MeasurementSettings{}, fmt.Errorf("settings service: load: %w", err)
	}
	return settingsFromOptions(values), nil
}

// Update sanitizes input, persists it in one transaction and stamps updated_at.
func (s *SettingsService) Update(ctx context.Context, actor RequestActor, input SettingsInput) (MeasurementSettings, error) {
	ctx = ensureContext(ctx)

	settings := SanitizeSettings(input, s.now())

	if err := database.UpsertOptionGroup(ctx, s.db, database.WidgetOptionKey, settings.options()); err != nil {
		monitoring.RecordSettingsUpdate("error", 0)
		recordAudit(s.audit, ctx, AuditEntry{
			Actor:     actor.Username,
			Action:    AuditActionSettingsUpdate,
			Resource:  SettingsResource,
			Result:    AuditResultFailure,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return MeasurementSettings{}, fmt.Errorf("settings service: save: %w", err)
	}

	result := bmi.Compute(settings.Measurements())
	monitoring.RecordSettingsUpdate("success", result.BMI)

	metadata := map[string]any{
		"weight":       settings.Weight,
		"weight_unit":  settings.WeightUnit,
		"height":       settings.Height,
		"height_unit":  settings.HeightUnit,
		"show_updated": settings.ShowUpdated,
		"custom_label": settings.CustomLabel,
	}
	if result.Valid() {
		metadata["bmi"] = result.BMI
		metadata["classification"] = result.Classification.String()
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:     actor.Username,
		Action:    AuditActionSettingsUpdate,
		Resource:  SettingsResource,
		Result:    AuditResultSuccess,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Metadata:  metadata,
	})

	return settings, nil
}
