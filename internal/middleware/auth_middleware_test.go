package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/auditctx"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
)

func newTestJWT(t *testing.T) *iauth.JWTService {
	t.Helper()
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "middleware-test-secret",
		Issuer:         "bmiwidget-tests",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)
	return jwtSvc
}

func issueToken(t *testing.T, jwtSvc *iauth.JWTService, subject, role string) string {
	t.Helper()
	issued, err := jwtSvc.Issue(subject, role)
	require.NoError(t, err)
	return issued.Token
}

func TestAuthRejectsMissingOrBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)
	valid := issueToken(t, jwtSvc, "admin", iauth.RoleAdmin)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := map[string]func(*http.Request){
		"no credentials":      func(*http.Request) {},
		"garbage bearer":      func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-token") },
		"empty bearer":        func(r *http.Request) { r.Header.Set("Authorization", "Bearer   ") },
		"basic scheme":        func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
		"blank cookie":        func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: " "}) },
		"header beats cookie": func(r *http.Request) {
			r.Header.Set("Authorization", "Basic abc")
			r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: valid})
		},
	}
	for name, decorate := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			decorate(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthPublishesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)
	token := issueToken(t, jwtSvc, "admin", iauth.RoleAdmin)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc), RequireRole(iauth.RoleAdmin), func(c *gin.Context) {
		actor, _ := auditctx.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"subject": c.GetString(CtxSubjectKey),
			"role":    c.GetString(CtxRoleKey),
			"actor":   actor.Username,
			"agent":   actor.UserAgent,
		})
	})

	for _, viaCookie := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("User-Agent", "widget-test")
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
		} else {
			req.Header.Set("Authorization", "bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "cookie=%v", viaCookie)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		require.Equal(t, map[string]string{
			"subject": "admin",
			"role":    iauth.RoleAdmin,
			"actor":   "admin",
			"agent":   "widget-test",
		}, payload)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)
	viewer := issueToken(t, jwtSvc, "viewer", "viewer")

	r := gin.New()
	r.GET("/admin", Auth(jwtSvc), RequireRole(iauth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/either", Auth(jwtSvc), RequireRole(iauth.RoleAdmin, "viewer"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/anonymous", RequireRole(iauth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusForbidden, send("/admin", viewer))
	require.Equal(t, http.StatusOK, send("/either", viewer))
	require.Equal(t, http.StatusUnauthorized, send("/anonymous", ""))
}
