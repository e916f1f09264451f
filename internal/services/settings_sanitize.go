package services

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fropcore/bmiwidget/internal/bmi"
)

// Layouts accepted when reading updated_at. Saves always write the first one.
var updatedAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

var (
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	labelPolicy   = bluemonday.StrictPolicy()
)

// SettingsInput is the raw submission from the settings form or JSON API.
// Every field is optional; sanitization never fails.
type SettingsInput struct {
	Weight      string `form:"weight" json:"weight"`
	WeightUnit  string `form:"weight_unit" json:"weight_unit"`
	Height      string `form:"height" json:"height"`
	HeightUnit  string `form:"height_unit" json:"height_unit"`
	ShowUpdated string `form:"show_updated" json:"show_updated"`
	CustomLabel string `form:"custom_label" json:"custom_label"`
}

// SanitizeSettings coerces a submission into a storable record stamped with now.
// Numbers keep their leading numeric prefix ("70kg" reads as 70, garbage as 0);
// negative numbers are kept and later rejected by the calculator. Units must
// match exactly or fall back to kg / cm.
func SanitizeSettings(input SettingsInput, now time.Time) MeasurementSettings {
	weightUnit, _ := bmi.ParseWeightUnit(input.WeightUnit)
	heightUnit, _ := bmi.ParseHeightUnit(input.HeightUnit)
	updated := now.Truncate(time.Second)

	return MeasurementSettings{
		Weight:      ParseLooseFloat(input.Weight),
		WeightUnit:  weightUnit,
		Height:      ParseLooseFloat(input.Height),
		HeightUnit:  heightUnit,
		ShowUpdated: truthy(input.ShowUpdated),
		CustomLabel: SanitizeLabel(input.CustomLabel),
		UpdatedAt:   &updated,
	}
}

// ParseLooseFloat reads the leading decimal number of raw, or 0 when there is none.
func ParseLooseFloat(raw string) float64 {
	match := leadingNumber.FindString(strings.TrimLeft(raw, " \t\n\r\v\f"))
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// SanitizeLabel strips markup and collapses whitespace into single spaces.
// The result is plain text; escaping happens at render time.
func SanitizeLabel(raw string) string {
	// Entity-encoded tags become real tags after unescaping, so strip until a
	// round changes nothing. Neither step grows the text, which bounds the loop.
	text := raw
	for range len(raw) + 1 {
		next := html.UnescapeString(labelPolicy.Sanitize(text))
		if next == text {
			break
		}
		text = next
	}
	return strings.Join(strings.Fields(text), " ")
}

func truthy(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && raw != "0"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m MeasurementSettings) options() map[string]string {
	values := map[string]string{
		"weight":       formatNumber(m.Weight),
		"weight_unit":  string(m.WeightUnit),
		"height":       formatNumber(m.Height),
		"height_unit":  string(m.HeightUnit),
		"show_updated": "0",
		"custom_label": m.CustomLabel,
	}
	if m.ShowUpdated {
		values["show_updated"] = "1"
	}
	if m.UpdatedAt != nil {
		values["updated_at"] = m.UpdatedAt.Format(updatedAtLayouts[0])
	}
	return values
}

func settingsFromOptions(values map[string]string) MeasurementSettings {
	settings := DefaultMeasurementSettings()
	settings.Weight = ParseLooseFloat(values["weight"])
	settings.WeightUnit = bmi.NormalizeWeightUnit(values["weight_unit"])
	settings.Height = ParseLooseFloat(values["height"])
	settings.HeightUnit = bmi.NormalizeHeightUnit(values["height_unit"])
	settings.ShowUpdated = truthy(values["show_updated"])
	settings.CustomLabel = values["custom_label"]

	if raw := strings.TrimSpace(values["updated_at"]); raw != "" {
		for _, layout := range updatedAtLayouts {
			if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				settings.UpdatedAt = &parsed
				break
			}
		}
	}
	return settings
}
