package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/middleware"
	"github.com/fropcore/bmiwidget/internal/monitoring"
	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/logger"
	"github.com/fropcore/bmiwidget/pkg/response"
)

var (
	errAccountLocked = appErrors.New("ACCOUNT_LOCKED", "Too many failed attempts, try again later", http.StatusTooManyRequests)
	errLoginDisabled = appErrors.New("LOGIN_DISABLED", "Admin login is not configured", http.StatusForbidden)
)

// AuthHandler manages the admin login.
type AuthHandler struct {
	admin *iauth.AdminAuthenticator
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(admin *iauth.AdminAuthenticator) (*AuthHandler, error) {
	if admin == nil {
		return nil, errors.New("auth handler: admin authenticator is required")
	}
	return &AuthHandler{admin: admin}, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int       `json:"expires_in"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	issued, err := h.admin.Login(requestContext(c), iauth.LoginInput{
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.loginFailed(c, err)
		return
	}

	monitoring.RecordAuthAttempt("success")
	expiresIn := int(time.Until(issued.ExpiresAt).Seconds())
	setAuthCookie(c, issued.Token, expiresIn)

	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		ExpiresIn:   expiresIn,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	setAuthCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"username": c.GetString(middleware.CtxSubjectKey),
		"role":     c.GetString(middleware.CtxRoleKey),
	})
}

func (h *AuthHandler) loginFailed(c *gin.Context, err error) {
	log := logger.WithModule("auth")
	switch {
	case errors.Is(err, iauth.ErrInvalidCredentials):
		monitoring.RecordAuthAttempt("failure")
		log.Info("admin login rejected", zap.String("ip", c.ClientIP()))
		response.Error(c, appErrors.ErrInvalidCredentials)
	case errors.Is(err, iauth.ErrAccountLocked):
		monitoring.RecordAuthAttempt("failure")
		log.Warn("admin login locked", zap.String("ip", c.ClientIP()))
		response.Error(c, errAccountLocked)
	case errors.Is(err, iauth.ErrLoginDisabled):
		monitoring.RecordAuthAttempt("failure")
		response.Error(c, errLoginDisabled)
	default:
		monitoring.RecordAuthAttempt("error")
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}

func setAuthCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   middleware.IsSecureRequest(c.Request),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
