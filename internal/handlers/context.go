package handlers

import (
	"cmp"
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/auditctx"
	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/services"
)

// requestContext tolerates the bare gin contexts some unit tests build.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// requestActor prefers the actor the audit middleware stored and falls back
// to what the request itself carries.
func requestActor(c *gin.Context) services.RequestActor {
	stored, _ := auditctx.FromContext(requestContext(c))

	var userAgent string
	if c.Request != nil {
		userAgent = c.Request.UserAgent()
	}
	return services.RequestActor{
		Username:  cmp.Or(stored.Username, strings.TrimSpace(c.GetString(middleware.CtxSubjectKey))),
		IPAddress: cmp.Or(stored.IPAddress, c.ClientIP()),
		UserAgent: cmp.Or(stored.UserAgent, userAgent),
	}
}
