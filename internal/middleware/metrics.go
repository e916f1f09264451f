package middleware

import (
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/monitoring"
)

const unmatchedRoute = "unmatched"

// Metrics observes request latency labelled by route template, so /shortcode/:tag
// stays one series however many tags are requested. Requests for skipPaths (the
// scrape endpoint, typically) are not observed.
func Metrics(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(skipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		monitoring.ObserveAPILatency(c.Request.Method, route, status, time.Since(start))
	}
}
