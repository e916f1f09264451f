package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL applies when no positive TTL is configured.
	DefaultAccessTokenTTL = 12 * time.Hour

	// RoleAdmin is the only role issued; it unlocks the settings surface.
	RoleAdmin = "admin"
)

var (
	ErrMissingSecret  = errors.New("jwt: secret must be provided")
	ErrMissingSubject = errors.New("jwt: missing subject claim")
	ErrEmptyToken     = errors.New("jwt: token string is empty")
)

var signingMethod = jwt.SigningMethodHS256

type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims are the registered claims plus the caller's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token and its expiry.
type IssuedToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JWTService signs and verifies HS256 admin tokens.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	s := &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		now:    cfg.Clock,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultAccessTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithExpirationRequired(),
	}
	s.parser = jwt.NewParser(opts...)
	return s, nil
}

func (s *JWTService) TTL() time.Duration { return s.ttl }

// SecretLength is the signing secret size in bytes; 0 for a nil service.
func (s *JWTService) SecretLength() int {
	if s == nil {
		return 0
	}
	return len(s.secret)
}

// Issue signs a token for subject. An empty role means RoleAdmin.
func (s *JWTService) Issue(subject, role string) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, ErrMissingSubject
	}
	if role == "" {
		role = RoleAdmin
	}

	issuedAt := s.now()
	expiry := issuedAt.Add(s.ttl)
	signed, err := jwt.NewWithClaims(signingMethod, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("jwt: sign token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: expiry}, nil
}

// Validate verifies signature, expiry and issuer and returns the claims.
// Parser failures wrap the jwt package's sentinel errors.
func (s *JWTService) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrEmptyToken
	}

	claims := new(Claims)
	if _, err := s.parser.ParseWithClaims(raw, claims, s.key); err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	switch {
	case s.issuer != "" && claims.Issuer != s.issuer:
		return nil, errors.New("jwt: invalid issuer")
	case claims.Subject == "":
		return nil, ErrMissingSubject
	}
	return claims, nil
}

func (s *JWTService) key(*jwt.Token) (any, error) {
	return s.secret, nil
}
