package widget

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/services"
)

func TestSettingsFields(t *testing.T) {
	fields := SettingsFields(services.MeasurementSettings{
		Weight:      72.5,
		WeightUnit:  bmi.Pounds,
		Height:      180,
		HeightUnit:  bmi.Centimeters,
		ShowUpdated: true,
		CustomLabel: "Me",
	})

	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	require.Equal(t, []string{"weight", "weight_unit", "height", "height_unit", "show_updated", "custom_label"}, keys)
	require.Equal(t, "72.5", fields[0].Value)
	require.Equal(t, []string{"kg", "lb"}, fields[1].Choices)
	require.Equal(t, "lb", fields[1].Value)
	require.Equal(t, []string{"cm", "in"}, fields[3].Choices)
	require.Equal(t, "1", fields[4].Value)
	require.Equal(t, "Me", fields[5].Value)
}

func TestSettingsPageRender(t *testing.T) {
	page, err := NewSettingsPage()
	require.NoError(t, err)

	settings := services.DefaultMeasurementSettings()
	settings.Weight = 80
	settings.HeightUnit = bmi.Inches
	settings.CustomLabel = `"quoted" <label>`

	out, err := page.Render(SettingsPageData{
		Settings:  settings,
		Action:    "/admin/settings",
		CSRFToken: "tok123",
		Updated:   true,
	})
	require.NoError(t, err)
	require.Contains(t, out, `<html lang="en">`)
	require.Contains(t, out, `<form method="post" action="/admin/settings">`)
	require.Contains(t, out, `name="csrf_token" value="tok123"`)
	require.Contains(t, out, "Settings saved.")
	require.Contains(t, out, `<input type="number" step="0.01" min="0" id="weight" name="weight" value="80" class="regular-text" />`)
	require.Contains(t, out, `<option value="in" selected="selected">in</option>`)
	require.Contains(t, out, `<option value="kg" selected="selected">kg</option>`)
	require.NotContains(t, out, `checked="checked"`)
	require.Contains(t, out, `value="&#34;quoted&#34; &lt;label&gt;"`)
	require.Contains(t, out, "The plugin will compute BMI and obesity class.")
}

func TestSettingsPageError(t *testing.T) {
	page, err := NewSettingsPage()
	require.NoError(t, err)

	out, err := page.Render(SettingsPageData{
		Settings: services.MeasurementSettings{ShowUpdated: true},
		Error:    "could not save",
		Lang:     "de",
	})
	require.NoError(t, err)
	require.Contains(t, out, `<html lang="de">`)
	require.Contains(t, out, "could not save")
	require.NotContains(t, out, "Settings saved.")
	require.Contains(t, out, `checked="checked"`)
}
