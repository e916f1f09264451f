// Package widget renders the measurement record as HTML fragments: the result
// block, the sidebar widget wrapping it, the [bmi_widget] shortcode and the
// admin settings form.
package widget

import (
	"context"

	"github.com/fropcore/bmiwidget/internal/services"
)

// Renderable produces an HTML fragment for the stored measurements.
type Renderable interface {
	Render(ctx context.Context, settings services.MeasurementSettings) (string, error)
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(ctx context.Context, settings services.MeasurementSettings) (string, error)

// Render calls f.
func (f RenderFunc) Render(ctx context.Context, settings services.MeasurementSettings) (string, error) {
	return f(ctx, settings)
}
