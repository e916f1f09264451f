package widget

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/services"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	renderer, err := NewRenderer(opts)
	require.NoError(t, err)
	return renderer
}

func metricSettings() services.MeasurementSettings {
	updated := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return services.MeasurementSettings{
		Weight:      70,
		WeightUnit:  bmi.Kilograms,
		Height:      175,
		HeightUnit:  bmi.Centimeters,
		ShowUpdated: true,
		UpdatedAt:   &updated,
	}
}

func TestRendererRendersResultBlock(t *testing.T) {
	renderer := newTestRenderer(t, Options{})

	out, err := renderer.Render(context.Background(), metricSettings())
	require.NoError(t, err)
	require.Contains(t, out, `<div class="bmi-widget">`)
	require.Contains(t, out, "<strong>Weight:</strong> 70.0 kg (154.3 lb)")
	require.Contains(t, out, "<strong>BMI:</strong> 22.9 (Normal weight)")
	require.Contains(t, out, "Last updated: March 1, 2024 9:30 am")
	require.Contains(t, out, ".bmi-widget { line-height:1.5; }")
}

func TestRendererHidesUpdatedLine(t *testing.T) {
	renderer := newTestRenderer(t, Options{})

	settings := metricSettings()
	settings.ShowUpdated = false
	out, err := renderer.Render(context.Background(), settings)
	require.NoError(t, err)
	require.NotContains(t, out, "Last updated")

	settings.ShowUpdated = true
	settings.UpdatedAt = nil
	out, err = renderer.Render(context.Background(), settings)
	require.NoError(t, err)
	require.NotContains(t, out, "Last updated")
}

func TestRendererUnconfigured(t *testing.T) {
	renderer := newTestRenderer(t, Options{})

	out, err := renderer.Render(context.Background(), services.DefaultMeasurementSettings())
	require.NoError(t, err)
	require.Equal(t, UnconfiguredMessage, out)

	settings := metricSettings()
	settings.Height = -1
	out, err = renderer.Render(context.Background(), settings)
	require.NoError(t, err)
	require.Equal(t, UnconfiguredMessage, out)
}

func TestRendererLocaleAndLayouts(t *testing.T) {
	renderer := newTestRenderer(t, Options{Locale: "de", DateFormat: "02.01.2006", TimeFormat: "15:04"})

	updated := time.Date(2024, 3, 1, 21, 5, 0, 0, time.UTC)
	out, err := renderer.Render(context.Background(), services.MeasurementSettings{
		Weight:      1234.5,
		WeightUnit:  bmi.Pounds,
		Height:      70,
		HeightUnit:  bmi.Inches,
		ShowUpdated: true,
		UpdatedAt:   &updated,
	})
	require.NoError(t, err)
	require.Contains(t, out, "1.234,5 lb (560.0 kg)")
	require.Contains(t, out, "<strong>BMI:</strong> 177,1 (Obesity class III)")
	require.Contains(t, out, "Last updated: 01.03.2024 21:05")
}

func TestRendererFormatUpdatedAtUsesLocation(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	renderer := newTestRenderer(t, Options{Location: berlin, TimeFormat: "15:04"})

	got := renderer.FormatUpdatedAt(time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC))
	require.Equal(t, "January 1, 2025 00:30", got)
}

func TestRendererHonoursCancelledContext(t *testing.T) {
	renderer := newTestRenderer(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := renderer.Render(ctx, metricSettings())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRendererComputeMatchesCalculator(t *testing.T) {
	renderer := newTestRenderer(t, Options{})

	result := renderer.Compute(metricSettings())
	require.True(t, result.Valid())
	require.Equal(t, 22.9, result.BMI)
	require.True(t, strings.HasPrefix(renderer.Calculator().Numbers().Tag().String(), "en"))
}
