package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// RequireRole lets the request through when the token issued by Auth carries
// one of roles. Without a prior Auth the request is treated as anonymous.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var failure *errors.AppError
		switch {
		case c.GetString(CtxSubjectKey) == "":
			failure = errors.ErrUnauthorized
		case !slices.Contains(roles, c.GetString(CtxRoleKey)):
			failure = errors.ErrForbidden
		}
		if failure != nil {
			response.Error(c, failure)
			c.Abort()
			return
		}
		c.Next()
	}
}
