// Package security inspects the running configuration for weaknesses an
// operator should fix before exposing the admin surface.
package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/app"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
	"github.com/fropcore/bmiwidget/internal/database"
)

type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const (
	// MaxRecommendedTokenTTL bounds admin token lifetime before the audit warns.
	MaxRecommendedTokenTTL = 24 * time.Hour

	minSecretBytes         = 32
	recommendedSecretBytes = 48
)

// Check is one finding. Remediation is set whenever Status is not pass.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

func finding(id string, status CheckStatus, format string, args ...any) Check {
	return Check{ID: id, Status: status, Message: fmt.Sprintf(format, args...)}
}

func (c Check) fix(remediation string) Check {
	c.Remediation = remediation
	return c
}

func (c Check) detail(details map[string]any) Check {
	c.Details = details
	return c
}

// Result is a full audit run. Summary counts checks per status and always
// holds all three keys.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// AuditService runs the checks. Each dependency may be nil; the checks that
// need it then report a warning instead of a verdict.
type AuditService struct {
	db  *gorm.DB
	jwt *iauth.JWTService
	cfg *app.Config
	now func() time.Time
}

func NewAuditService(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) *AuditService {
	return &AuditService{db: db, jwt: jwt, cfg: cfg, now: time.Now}
}

// WithClock replaces the clock stamped on results.
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run evaluates every check in a fixed order.
func (s *AuditService) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	res := Result{
		CheckedAt: s.now().UTC(),
		Checks: []Check{
			s.adminLogin(),
			s.signingSecret(),
			s.tokenLifetime(),
			s.csrf(),
			s.widgetConfigured(ctx),
		},
		Summary: make(map[string]int, 3),
	}
	for _, status := range []CheckStatus{StatusPass, StatusWarn, StatusFail} {
		res.Summary[string(status)] = 0
	}
	for _, c := range res.Checks {
		res.Summary[string(c.Status)]++
	}
	return res
}

const noConfig = "Configuration not loaded; %s cannot be verified."

func (s *AuditService) adminLogin() Check {
	const id = "admin_login"
	if s.cfg == nil {
		return finding(id, StatusWarn, noConfig, "the admin account").
			fix("Load configuration before auditing.")
	}

	hash := strings.TrimSpace(s.cfg.Auth.Admin.PasswordHash)
	if hash == "" {
		return finding(id, StatusWarn, "Admin login is disabled; measurements can only be changed through the database.").
			fix("Generate a hash with `bmictl hash-password` and set BMIWIDGET_AUTH_ADMIN_PASSWORD_HASH.")
	}

	cost, err := bcrypt.Cost([]byte(hash))
	switch {
	case err != nil:
		return finding(id, StatusFail, "Admin password hash is not a bcrypt hash.").
			fix("Regenerate the hash with `bmictl hash-password`.")
	case cost < bcrypt.DefaultCost:
		return finding(id, StatusWarn, "Admin password hash uses bcrypt cost %d.", cost).
			fix(fmt.Sprintf("Rehash the password with cost %d or more.", bcrypt.DefaultCost)).
			detail(map[string]any{"cost": cost})
	}
	return finding(id, StatusPass, "Admin login configured for %q.", s.cfg.Auth.Admin.Username).
		detail(map[string]any{"username": s.cfg.Auth.Admin.Username, "cost": cost})
}

func (s *AuditService) signingSecret() Check {
	const id = "jwt_secret_strength"
	if s.jwt == nil {
		return finding(id, StatusWarn, "Token signer unavailable; secret strength unknown.").
			fix("Start the server with a JWT secret configured.")
	}

	n := s.jwt.SecretLength()
	details := map[string]any{"length": n}
	switch {
	case n < minSecretBytes:
		return finding(id, StatusFail, "Token signing secret is only %d bytes.", n).
			fix(fmt.Sprintf("Use a random secret of at least %d bytes.", minSecretBytes)).
			detail(details)
	case n < recommendedSecretBytes:
		return finding(id, StatusWarn, "Token signing secret is %d bytes; %d or more is recommended.", n, recommendedSecretBytes).
			fix("Lengthen BMIWIDGET_AUTH_JWT_SECRET.").
			detail(details)
	}
	return finding(id, StatusPass, "Token signing secret is %d bytes.", n).detail(details)
}

func (s *AuditService) tokenLifetime() Check {
	const id = "access_token_ttl"
	if s.jwt == nil {
		return finding(id, StatusWarn, "Token signer unavailable; token lifetime unknown.").
			fix("Start the server with a JWT secret configured.")
	}

	ttl := s.jwt.TTL()
	details := map[string]any{"ttl": ttl.String()}
	if ttl > MaxRecommendedTokenTTL {
		return finding(id, StatusWarn, "Admin tokens live %s, longer than %s.", ttl, MaxRecommendedTokenTTL).
			fix("Lower BMIWIDGET_AUTH_JWT_ACCESS_TOKEN_TTL to 24h or less.").
			detail(details)
	}
	return finding(id, StatusPass, "Admin tokens live %s.", ttl).detail(details)
}

func (s *AuditService) csrf() Check {
	const id = "csrf_protection"
	switch {
	case s.cfg == nil:
		return finding(id, StatusWarn, noConfig, "CSRF protection").
			fix("Load configuration before auditing.")
	case !s.cfg.Server.CSRF.Enabled:
		return finding(id, StatusFail, "The settings form accepts cross-site posts.").
			fix("Set BMIWIDGET_SERVER_CSRF_ENABLED=true.")
	}
	return finding(id, StatusPass, "CSRF protection enabled.")
}

func (s *AuditService) widgetConfigured(ctx context.Context) Check {
	const id = "widget_configured"
	if s.db == nil {
		return finding(id, StatusWarn, "No database handle; stored measurements cannot be read.").
			fix("Check database connectivity.")
	}

	values, err := database.GetOptionGroup(ctx, s.db, database.WidgetOptionKey)
	if err != nil {
		return finding(id, StatusWarn, "Reading stored measurements failed: %v", err).
			fix("Resolve the database error and audit again.")
	}

	updated := strings.TrimSpace(values["updated_at"])
	if updated == "" {
		return finding(id, StatusWarn, "Measurements were never saved, so the widget shows its setup message.").
			fix("Save weight and height from /admin/settings.")
	}
	return finding(id, StatusPass, "Measurements saved.").detail(map[string]any{"updated_at": updated})
}
