package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/pkg/response"
)

func panickingRouter(prefixes ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(prefixes...))
	r.GET("/api/bmi", func(*gin.Context) { panic("boom") })
	r.GET("/widget", func(*gin.Context) { panic(fmt.Errorf("template: %w", errTemplate)) })
	r.GET("/gone", func(*gin.Context) { panic(fmt.Errorf("write: %w", syscall.EPIPE)) })
	return r
}

var errTemplate = errors.New("missing block")

func TestRecoveryRendersJSONForAPI(t *testing.T) {
	logs := observeLogs(t)

	w := httptest.NewRecorder()
	panickingRouter("/widget").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bmi", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "INTERNAL_SERVER_ERROR", payload.Error.Code)
	require.NotContains(t, w.Body.String(), "boom")
	require.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestRecoveryRendersMarkupForWidget(t *testing.T) {
	observeLogs(t)

	w := httptest.NewRecorder()
	panickingRouter("/widget").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, WidgetUnavailableMarkup, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRecoveryIgnoresClientDisconnect(t *testing.T) {
	logs := observeLogs(t)

	w := httptest.NewRecorder()
	panickingRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gone", nil))

	require.Empty(t, w.Body.String())
	require.Zero(t, logs.FilterMessage("panic").Len())
	require.Equal(t, 1, logs.FilterMessage("client disconnected").Len())
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
	require.Contains(t, payload.Error.Message, "route /missing not found")
}
