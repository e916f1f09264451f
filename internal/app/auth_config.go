package app

import (
	"strings"

	"github.com/fropcore/bmiwidget/internal/auth"
)

// JWTServiceConfig maps the jwt block onto the token signer's config. A
// missing TTL falls back to auth.DefaultAccessTokenTTL.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	out := auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: auth.DefaultAccessTokenTTL,
	}
	if c.JWT.TTL > 0 {
		out.AccessTokenTTL = c.JWT.TTL
	}
	return out
}

func (c AuthConfig) AdminConfig() auth.AdminConfig {
	trim := strings.TrimSpace
	return auth.AdminConfig{Username: trim(c.Admin.Username), PasswordHash: trim(c.Admin.PasswordHash)}
}
