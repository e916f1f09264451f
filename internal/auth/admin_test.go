package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/cache"
	"github.com/fropcore/bmiwidget/internal/database/testutil"
	"github.com/fropcore/bmiwidget/pkg/crypto"
)

func newTestAuthenticator(t *testing.T, store cache.Store) *AdminAuthenticator {
	t.Helper()

	hash, err := crypto.HashPassword("correct horse")
	require.NoError(t, err)

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "secret", Issuer: "bmiwidget", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	authenticator, err := NewAdminAuthenticator(AdminConfig{
		Username:         "editor",
		PasswordHash:     hash,
		LockoutThreshold: 3,
	}, jwtSvc, store)
	require.NoError(t, err)
	return authenticator
}

func TestAdminLoginSuccess(t *testing.T) {
	authenticator := newTestAuthenticator(t, nil)

	issued, err := authenticator.Login(context.Background(), LoginInput{Username: "editor", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := authenticator.jwt.Validate(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "editor", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	authenticator := newTestAuthenticator(t, nil)

	_, err := authenticator.Login(context.Background(), LoginInput{Username: "editor", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authenticator.Login(context.Background(), LoginInput{Username: "admin", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	jwtSvc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	authenticator, err := NewAdminAuthenticator(AdminConfig{}, jwtSvc, nil)
	require.NoError(t, err)
	require.False(t, authenticator.Enabled())
	require.Equal(t, "admin", authenticator.Username())

	_, err = authenticator.Login(context.Background(), LoginInput{Username: "admin", Password: "x"})
	require.ErrorIs(t, err, ErrLoginDisabled)
}

func TestAdminLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	authenticator := newTestAuthenticator(t, cache.NewDatabaseStore(db))
	ctx := context.Background()
	input := LoginInput{Username: "editor", Password: "wrong", IPAddress: "10.0.0.1"}

	_, err := authenticator.Login(ctx, input)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authenticator.Login(ctx, input)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authenticator.Login(ctx, input)
	require.ErrorIs(t, err, ErrAccountLocked)

	input.Password = "correct horse"
	_, err = authenticator.Login(ctx, input)
	require.ErrorIs(t, err, ErrAccountLocked)

	// Other clients are unaffected.
	input.IPAddress = "10.0.0.2"
	_, err = authenticator.Login(ctx, input)
	require.NoError(t, err)
}

func TestNewAdminAuthenticatorRequiresJWT(t *testing.T) {
	_, err := NewAdminAuthenticator(AdminConfig{}, nil, nil)
	require.Error(t, err)
}
