package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fropcore/bmiwidget/internal/cache"
	"github.com/fropcore/bmiwidget/pkg/crypto"
)

var (
	// ErrInvalidCredentials is returned when the supplied username/password pair is invalid.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountLocked signals that too many failed attempts were made recently.
	ErrAccountLocked = errors.New("auth: account locked")
	// ErrLoginDisabled is returned when no admin password hash is configured.
	ErrLoginDisabled = errors.New("auth: admin login disabled")
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
)

// AdminConfig describes the single administrator account.
type AdminConfig struct {
	Username         string
	PasswordHash     string
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// LoginInput contains the credentials and request metadata for a login attempt.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

// AdminAuthenticator verifies the configured admin credentials and issues tokens.
// Failed attempts are counted per client address in the cache store.
type AdminAuthenticator struct {
	username  string
	hash      string
	jwt       *JWTService
	attempts  cache.Store
	threshold int
	duration  time.Duration
}

// NewAdminAuthenticator validates cfg and wires the token issuer. attempts may be nil,
// in which case no lockout is enforced.
func NewAdminAuthenticator(cfg AdminConfig, jwtService *JWTService, attempts cache.Store) (*AdminAuthenticator, error) {
	if jwtService == nil {
		return nil, errors.New("admin auth: jwt service is required")
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "admin"
	}

	threshold := cfg.LockoutThreshold
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}

	duration := cfg.LockoutDuration
	if duration <= 0 {
		duration = defaultLockoutDuration
	}

	return &AdminAuthenticator{
		username:  username,
		hash:      strings.TrimSpace(cfg.PasswordHash),
		jwt:       jwtService,
		attempts:  attempts,
		threshold: threshold,
		duration:  duration,
	}, nil
}

// Enabled reports whether a password hash has been configured.
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && a.hash != ""
}

// Username returns the configured admin login name.
func (a *AdminAuthenticator) Username() string {
	return a.username
}

// Login checks the credentials and returns a signed admin token.
func (a *AdminAuthenticator) Login(ctx context.Context, input LoginInput) (IssuedToken, error) {
	if !a.Enabled() {
		return IssuedToken{}, ErrLoginDisabled
	}

	lockKey := "login:" + strings.TrimSpace(input.IPAddress)
	if locked, err := a.isLocked(ctx, lockKey); err != nil {
		return IssuedToken{}, err
	} else if locked {
		return IssuedToken{}, ErrAccountLocked
	}

	usernameOK := crypto.ConstantTimeEqual(strings.TrimSpace(input.Username), a.username)
	passwordOK := crypto.VerifyPassword(a.hash, input.Password)
	if !usernameOK || !passwordOK {
		return IssuedToken{}, a.recordFailure(ctx, lockKey)
	}

	if a.attempts != nil {
		_ = a.attempts.Delete(ctx, lockKey)
	}

	return a.jwt.Issue(a.username, RoleAdmin)
}

func (a *AdminAuthenticator) isLocked(ctx context.Context, key string) (bool, error) {
	if a.attempts == nil {
		return false, nil
	}
	raw, ok, err := a.attempts.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("admin auth: read attempts: %w", err)
	}
	if !ok {
		return false, nil
	}
	var count int
	if _, err := fmt.Sscan(string(raw), &count); err != nil {
		return false, nil
	}
	return count >= a.threshold, nil
}

func (a *AdminAuthenticator) recordFailure(ctx context.Context, key string) error {
	if a.attempts == nil {
		return ErrInvalidCredentials
	}
	count, _, err := a.attempts.IncrementWithTTL(ctx, key, a.duration)
	if err != nil {
		return fmt.Errorf("admin auth: record attempt: %w", err)
	}
	if count >= int64(a.threshold) {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}
