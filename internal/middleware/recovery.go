package middleware

import (
	stdErrors "errors"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// WidgetUnavailableMarkup replaces a widget fragment whose render panicked.
// Hosts embed it verbatim, so it must stay valid inside any container.
const WidgetUnavailableMarkup = "<!-- bmiwidget: unavailable -->"

// Recovery turns a panic into a 500. Paths under htmlPrefixes get
// WidgetUnavailableMarkup so an embedding page never shows a JSON envelope;
// everything else gets the usual JSON error. Panics caused by the client
// hanging up are logged but not answered.
func Recovery(htmlPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			path := c.Request.URL.Path
			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("request_id", c.GetString(CtxRequestIDKey)),
				zap.Any("error", rec),
			}

			if clientGone(rec) {
				logger.WithModule("http").Warn("client disconnected", fields...)
				c.Abort()
				return
			}

			logger.WithModule("http").Error("panic", append(fields, zap.Stack("stack"))...)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			if hasAnyPrefix(path, htmlPrefixes) {
				response.HTML(c, http.StatusInternalServerError, WidgetUnavailableMarkup)
			} else {
				response.Error(c, errors.ErrInternalServer)
			}
			c.Abort()
		}()
		c.Next()
	}
}

func clientGone(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	return stdErrors.Is(err, syscall.EPIPE) ||
		stdErrors.Is(err, syscall.ECONNRESET) ||
		stdErrors.Is(err, http.ErrAbortHandler)
}

// NotFoundHandler answers unknown routes with a JSON 404.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage("route "+c.Request.URL.Path+" not found"))
}
