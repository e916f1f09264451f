package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/auditctx"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxClaimsKey  = "authClaims"
	CtxSubjectKey = "authSubject"
	CtxRoleKey    = "authRole"
)

// AuthCookieName carries the access token for the HTML settings page.
const AuthCookieName = "bmiwidget_token"

const bearerPrefix = "bearer "

// Auth rejects requests without a valid access token. An Authorization header
// takes precedence; AuthCookieName is consulted only when the header is absent.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := accessToken(c)
		var claims *iauth.Claims
		if ok {
			var err error
			if claims, err = jwt.Validate(raw); err != nil {
				ok = false
			}
		}
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxSubjectKey, claims.Subject)
		c.Set(CtxRoleKey, claims.Role)

		actor := auditctx.Actor{
			Username:  claims.Subject,
			Role:      claims.Role,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(auditctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func accessToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		return token, token != ""
	}

	cookie, _ := c.Cookie(AuthCookieName)
	cookie = strings.TrimSpace(cookie)
	return cookie, cookie != ""
}

// hasSessionCookie reports whether the browser sent ambient credentials.
func hasSessionCookie(c *gin.Context) bool {
	cookie, err := c.Cookie(AuthCookieName)
	return err == nil && cookie != ""
}
