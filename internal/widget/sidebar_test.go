package widget

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/services"
)

func staticBody(body string) Renderable {
	return RenderFunc(func(context.Context, services.MeasurementSettings) (string, error) {
		return body, nil
	})
}

func TestSidebarDefaults(t *testing.T) {
	sidebar := NewSidebar(staticBody("<p>body</p>"), SidebarOptions{})

	out, err := sidebar.Render(context.Background(), services.DefaultMeasurementSettings())
	require.NoError(t, err)
	require.Equal(t, `<section class="widget widget_bmi"><h2 class="widget-title">My Weight</h2><p>body</p></section>`, out)
	require.Equal(t, SidebarName, sidebar.Name())
	require.Equal(t, SidebarSummary, sidebar.Summary())
	require.Contains(t, sidebar.Description(), "No per-widget options.")
	require.Contains(t, sidebar.FormHTML(), "<strong>Settings → BMI Widget</strong>")
}

func TestSidebarUsesCustomLabel(t *testing.T) {
	sidebar := NewSidebar(staticBody(""), SidebarOptions{
		Title:        "Stats",
		BeforeWidget: "<div>",
		AfterWidget:  "</div>",
		BeforeTitle:  "<h3>",
		AfterTitle:   "</h3>",
	})

	settings := services.DefaultMeasurementSettings()
	require.Equal(t, "Stats", sidebar.Title(settings))

	settings.CustomLabel = `<b>Me & "you"</b>`
	out, err := sidebar.Render(context.Background(), settings)
	require.NoError(t, err)
	require.Equal(t, `<div><h3>&lt;b&gt;Me &amp; &#34;you&#34;&lt;/b&gt;</h3></div>`, out)

	settings.CustomLabel = "   "
	require.Equal(t, "Stats", sidebar.Title(settings))
}

func TestSidebarWrapsRenderer(t *testing.T) {
	renderer, err := NewRenderer(Options{})
	require.NoError(t, err)
	sidebar := NewSidebar(renderer, DefaultSidebarOptions())

	out, err := sidebar.Render(context.Background(), services.DefaultMeasurementSettings())
	require.NoError(t, err)
	require.Contains(t, out, UnconfiguredMessage)
	require.Contains(t, out, ">My Weight</h2>")
}

func TestSidebarPropagatesBodyError(t *testing.T) {
	boom := errors.New("boom")
	sidebar := NewSidebar(RenderFunc(func(context.Context, services.MeasurementSettings) (string, error) {
		return "", boom
	}), SidebarOptions{})

	_, err := sidebar.Render(context.Background(), services.DefaultMeasurementSettings())
	require.ErrorIs(t, err, boom)
}
