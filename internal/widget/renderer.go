package widget

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fropcore/bmiwidget/internal/bmi"
	"github.com/fropcore/bmiwidget/internal/services"
	"github.com/fropcore/bmiwidget/web"
)

// UnconfiguredMessage is shown instead of the result block when no valid
// measurements are stored.
const UnconfiguredMessage = `<p>Please configure your measurements in <em>Settings → BMI Widget</em>.</p>`

// Default display layouts (Go reference time).
const (
	DefaultDateFormat = "January 2, 2006"
	DefaultTimeFormat = "3:04 pm"
)

// Options configure number and date formatting.
type Options struct {
	Locale     string
	DateFormat string
	TimeFormat string
	Location   *time.Location
}

// Renderer renders the result block. It is safe for concurrent use.
type Renderer struct {
	calc       *bmi.Calculator
	dateLayout string
	location   *time.Location
	templates  *template.Template
}

type resultView struct {
	DisplayWeight  string
	BMI            string
	Classification string
	UpdatedAt      string
}

// NewRenderer parses the embedded templates and applies defaults to opts.
func NewRenderer(opts Options) (*Renderer, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	dateFormat := strings.TrimSpace(opts.DateFormat)
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	timeFormat := strings.TrimSpace(opts.TimeFormat)
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	location := opts.Location
	if location == nil {
		location = time.Local
	}

	return &Renderer{
		calc:       bmi.NewCalculator(opts.Locale),
		dateLayout: dateFormat + " " + timeFormat,
		location:   location,
		templates:  templates,
	}, nil
}

func loadTemplates() (*template.Template, error) {
	fsys, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("widget: open templates: %w", err)
	}
	templates, err := template.ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("widget: parse templates: %w", err)
	}
	return templates, nil
}

// Calculator exposes the locale-aware calculator used for rendering.
func (r *Renderer) Calculator() *bmi.Calculator {
	return r.calc
}

// Compute derives the result for settings with the renderer's locale.
func (r *Renderer) Compute(settings services.MeasurementSettings) bmi.Result {
	return r.calc.Compute(settings.Measurements())
}

// FormatUpdatedAt renders t with the configured date and time layouts.
func (r *Renderer) FormatUpdatedAt(t time.Time) string {
	return t.In(r.location).Format(r.dateLayout)
}

// Render returns the result block, or UnconfiguredMessage when the measurements are invalid.
func (r *Renderer) Render(ctx context.Context, settings services.MeasurementSettings) (string, error) {
	if ctx != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}

	result := r.Compute(settings)
	if !result.Valid() {
		return UnconfiguredMessage, nil
	}

	view := resultView{
		DisplayWeight:  result.DisplayWeight,
		BMI:            r.calc.Numbers().Decimal1(result.BMI),
		Classification: result.Classification.String(),
	}
	if settings.ShowUpdated && !result.UpdatedAt.IsZero() {
		view.UpdatedAt = r.FormatUpdatedAt(result.UpdatedAt)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "result", view); err != nil {
		return "", fmt.Errorf("widget: render result: %w", err)
	}
	return buf.String(), nil
}
