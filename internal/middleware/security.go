package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Content-Security-Policy values. The result block ships its own <style>, so
// inline styles are allowed everywhere.
const (
	DefaultContentSecurityPolicy    = "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"
	EmbeddableContentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors *"
)

// SecurityHeaders sets hardening headers on every response. Requests whose path
// starts with one of embeddable may be framed by other sites; everything else,
// including the admin pages, refuses framing.
func SecurityHeaders(embeddable ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if hasAnyPrefix(c.Request.URL.Path, embeddable) {
			h.Set("Content-Security-Policy", EmbeddableContentSecurityPolicy)
		} else {
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", DefaultContentSecurityPolicy)
		}
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
