// Package response writes the JSON envelope shared by every API endpoint and
// the raw HTML used by the widget endpoints.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
)

// Response is the envelope: success plus either data or error.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the client-visible part of an AppError.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Meta describes pagination.
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

const htmlContentType = "text/html; charset=utf-8"

func Success(c *gin.Context, statusCode int, data any) {
	SuccessWithMeta(c, statusCode, data, nil)
}

func SuccessWithMeta(c *gin.Context, statusCode int, data any, meta *Meta) {
	c.JSON(statusCode, Response{Success: true, Data: data, Meta: meta})
}

// HTML writes markup that has already been escaped by the caller.
func HTML(c *gin.Context, statusCode int, markup string) {
	c.Data(statusCode, htmlContentType, []byte(markup))
}

// Error renders err. Errors without an AppError in their chain become a
// generic 500; 5xx responses are logged with their internal cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}
	status := appErrors.StatusOf(appErr)

	if status >= http.StatusInternalServerError {
		logger.WithModule("http").Error("request failed",
			zap.String("code", appErr.Code),
			zap.String("path", requestPath(c)),
			zap.Error(appErr.Internal),
		)
	}

	c.JSON(status, Response{Error: &ErrorInfo{
		Code:    appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	}})
}

func requestPath(c *gin.Context) string {
	if c == nil || c.Request == nil || c.Request.URL == nil {
		return ""
	}
	return c.Request.URL.Path
}
