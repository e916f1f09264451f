package widget

import (
	"context"
	"html"
	"strings"

	"github.com/fropcore/bmiwidget/internal/services"
)

// Sidebar identity, shown wherever widgets are listed.
const (
	SidebarID      = "bmi_widget"
	SidebarName    = "BMI/Weight Display"
	SidebarSummary = "Shows your weight, BMI, and obesity class."
	DefaultTitle   = "My Weight"
)

// SidebarOptions hold the theme wrappers placed around the widget. They are
// trusted markup and emitted verbatim.
type SidebarOptions struct {
	Title        string
	BeforeWidget string
	AfterWidget  string
	BeforeTitle  string
	AfterTitle   string
}

// DefaultSidebarOptions returns the wrappers used when none are configured.
func DefaultSidebarOptions() SidebarOptions {
	return SidebarOptions{
		Title:        DefaultTitle,
		BeforeWidget: `<section class="widget widget_bmi">`,
		AfterWidget:  "</section>",
		BeforeTitle:  `<h2 class="widget-title">`,
		AfterTitle:   "</h2>",
	}
}

// Sidebar wraps a body Renderable with a title and theme wrappers.
type Sidebar struct {
	body Renderable
	opts SidebarOptions
}

// NewSidebar builds a sidebar widget around body. Empty options fall back to the defaults.
func NewSidebar(body Renderable, opts SidebarOptions) *Sidebar {
	defaults := DefaultSidebarOptions()
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = defaults.Title
	}
	if opts.BeforeWidget == "" && opts.AfterWidget == "" {
		opts.BeforeWidget, opts.AfterWidget = defaults.BeforeWidget, defaults.AfterWidget
	}
	if opts.BeforeTitle == "" && opts.AfterTitle == "" {
		opts.BeforeTitle, opts.AfterTitle = defaults.BeforeTitle, defaults.AfterTitle
	}
	return &Sidebar{body: body, opts: opts}
}

// Name is the widget's display name.
func (s *Sidebar) Name() string { return SidebarName }

// Summary is the one-line blurb listed next to the name.
func (s *Sidebar) Summary() string { return SidebarSummary }

// Description explains that the widget has no options of its own.
func (s *Sidebar) Description() string {
	return "Uses values from Settings → BMI Widget. No per-widget options."
}

// FormHTML is the markup shown in place of a per-widget options form.
func (s *Sidebar) FormHTML() string {
	return `<p>Uses values from <strong>Settings → BMI Widget</strong>. No per-widget options.</p>`
}

// Title returns the heading text: the custom label when set, else the configured title.
func (s *Sidebar) Title(settings services.MeasurementSettings) string {
	if label := strings.TrimSpace(settings.CustomLabel); label != "" {
		return label
	}
	return s.opts.Title
}

// Render emits wrappers, escaped title and body.
func (s *Sidebar) Render(ctx context.Context, settings services.MeasurementSettings) (string, error) {
	body, err := s.body.Render(ctx, settings)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(s.opts.BeforeWidget)
	b.WriteString(s.opts.BeforeTitle)
	b.WriteString(html.EscapeString(s.Title(settings)))
	b.WriteString(s.opts.AfterTitle)
	b.WriteString(body)
	b.WriteString(s.opts.AfterWidget)
	return b.String(), nil
}
