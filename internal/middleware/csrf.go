package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/pkg/crypto"
	"github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
	"github.com/fropcore/bmiwidget/pkg/response"
)

const (
	CSRFCookieName = "bmiwidget_csrf"
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFormField is the hidden input the settings form posts the token in.
	CSRFFormField = "csrf_token"
	// CtxCSRFTokenKey holds the request's token for handlers rendering forms.
	CtxCSRFTokenKey = "csrfToken"

	// DefaultCSRFCookieTTL applies when no positive TTL is configured.
	DefaultCSRFCookieTTL = 12 * time.Hour

	csrfTokenLength = 48
)

// CSRFOption tunes the CSRF middleware.
type CSRFOption func(*csrfGuard)

// WithCSRFCookieTTL sets the token cookie lifetime. Non-positive values keep
// DefaultCSRFCookieTTL.
func WithCSRFCookieTTL(ttl time.Duration) CSRFOption {
	return func(g *csrfGuard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

type csrfGuard struct {
	ttl time.Duration
}

// CSRF guards the settings form with a double-submit cookie. Every response
// carries the token cookie. A state-changing request that rides on the auth
// cookie must echo it in X-CSRF-Token or the csrf_token field; bearer-only
// clients carry no ambient credentials and pass untouched.
func CSRF(opts ...CSRFOption) gin.HandlerFunc {
	g := &csrfGuard{ttl: DefaultCSRFCookieTTL}
	for _, opt := range opts {
		opt(g)
	}
	return g.handle
}

func (g *csrfGuard) handle(c *gin.Context) {
	method := c.Request.Method
	if method == http.MethodOptions {
		c.Next()
		return
	}

	token, fresh, err := g.token(c)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		c.Abort()
		return
	}
	c.Set(CtxCSRFTokenKey, token)

	if !changesState(method) {
		c.Header(CSRFHeaderName, token)
		c.Next()
		return
	}

	// A cookie minted on this very request was never seen by the page, so it
	// cannot validate anything.
	if hasSessionCookie(c) && (fresh || !crypto.ConstantTimeEqual(token, presentedToken(c))) {
		logger.WithModule("csrf").Warn("csrf validation failed",
			zap.String("method", method),
			zap.String("path", c.FullPath()),
			zap.Bool("cookie_issued", fresh),
		)
		response.Error(c, errors.ErrCSRFInvalid)
		c.Abort()
		return
	}
	c.Next()
}

// token returns the cookie token, minting one when absent. The cookie is
// rewritten either way so its lifetime slides with activity.
func (g *csrfGuard) token(c *gin.Context) (string, bool, error) {
	token, err := c.Cookie(CSRFCookieName)
	fresh := err != nil || token == ""
	if fresh {
		if token, err = crypto.GenerateToken(csrfTokenLength); err != nil {
			return "", false, err
		}
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
		Secure:   IsSecureRequest(c.Request),
		SameSite: http.SameSiteStrictMode,
	})
	return token, fresh, nil
}

func presentedToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader(CSRFHeaderName)); header != "" {
		return header
	}
	return strings.TrimSpace(c.PostForm(CSRFFormField))
}

// CSRFToken returns the request's token, or "" when CSRF is off.
func CSRFToken(c *gin.Context) string {
	return c.GetString(CtxCSRFTokenKey)
}

// IsSecureRequest reports whether the request arrived over TLS, directly or
// through a proxy that sets X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func changesState(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
