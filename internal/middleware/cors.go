package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsAllowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsAllowHeaders  = strings.Join([]string{"Content-Type", "Accept-Language"}, ", ")
	corsExposeHeaders = strings.Join([]string{
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", RequestIDHeader,
	}, ", ")
)

// CORS opens the read-only widget surface to any origin so other sites can
// fetch the fragments. Only paths under one of public get the headers, and
// credentials are never allowed cross-origin; the admin API stays same-origin.
func CORS(public ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasAnyPrefix(c.Request.URL.Path, public) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
