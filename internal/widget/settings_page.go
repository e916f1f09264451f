package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/services"
)

// SettingsField describes one input of the settings form.
type SettingsField struct {
	Key     string
	Label   string
	Type    string // number, select, checkbox or text
	Value   string
	Choices []string
}

// SettingsPageData is everything the settings form needs.
type SettingsPageData struct {
	Settings  services.MeasurementSettings
	Action    string
	CSRFToken string
	Updated   bool
	Error     string
	Lang      string
}

type settingsPageView struct {
	Action    string
	CSRFToken string
	Updated   bool
	Error     string
	Lang      string
	Fields    []SettingsField
}

// SettingsPage renders the admin form for the measurement record.
type SettingsPage struct {
	templates *template.Template
}

// NewSettingsPage parses the embedded templates.
func NewSettingsPage() (*SettingsPage, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &SettingsPage{templates: templates}, nil
}

// SettingsFields lists the form inputs in display order, filled from settings.
func SettingsFields(settings services.MeasurementSettings) []SettingsField {
	weightUnits := make([]string, 0, 2)
	for _, unit := range bmi.WeightUnits() {
		weightUnits = append(weightUnits, string(unit))
	}
	heightUnits := make([]string, 0, 2)
	for _, unit := range bmi.HeightUnits() {
		heightUnits = append(heightUnits, string(unit))
	}

	showUpdated := "0"
	if settings.ShowUpdated {
		showUpdated = "1"
	}

	return []SettingsField{
		{Key: "weight", Label: "Weight", Type: "number", Value: formatInput(settings.Weight)},
		{Key: "weight_unit", Label: "Weight Unit", Type: "select", Value: string(settings.WeightUnit), Choices: weightUnits},
		{Key: "height", Label: "Height", Type: "number", Value: formatInput(settings.Height)},
		{Key: "height_unit", Label: "Height Unit", Type: "select", Value: string(settings.HeightUnit), Choices: heightUnits},
		{Key: "show_updated", Label: "Show “Last Updated”", Type: "checkbox", Value: showUpdated},
		{Key: "custom_label", Label: "Custom Label (optional)", Type: "text", Value: settings.CustomLabel},
	}
}

// Render returns the complete settings page document.
func (p *SettingsPage) Render(data SettingsPageData) (string, error) {
	lang := data.Lang
	if lang == "" {
		lang = "en"
	}
	view := settingsPageView{
		Action:    data.Action,
		CSRFToken: data.CSRFToken,
		Updated:   data.Updated,
		Error:     data.Error,
		Lang:      lang,
		Fields:    SettingsFields(data.Settings),
	}

	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, "settings_page", view); err != nil {
		return "", fmt.Errorf("widget: render settings page: %w", err)
	}
	return buf.String(), nil
}

func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
