package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/monitoring"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mod, err := monitoring.NewModule(monitoring.Options{DisableGoCollector: true, DisableProcessCollector: true})
	require.NoError(t, err)
	monitoring.SetModule(mod)

	r := gin.New()
	r.Use(Metrics("/metrics"))
	r.GET("/shortcode/:tag", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/shortcode/bmi", "/shortcode/bmi_widget", "/metrics", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// One series for the shortcode template, one for unmatched; /metrics is skipped.
	series, err := promtestutil.GatherAndCount(mod.Registry(), "bmiwidget_api_latency_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, series)
}
