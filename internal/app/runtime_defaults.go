package app

import (
	"fmt"
	"strings"

	"github.com/fropcore/bmiwidget/pkg/crypto"
)

const jwtSecretBytes = 48

// ApplyRuntimeDefaults fills in secrets that cannot have a static default and
// reports which keys it touched, so callers can log the event without the values.
//
//   - auth.jwt.secret is generated when empty. It lives only as long as the
//     process, so admin tokens do not survive a restart.
//   - auth.admin.password_hash is derived from auth.admin.password when only the
//     plaintext bootstrap password is set. The plaintext is cleared afterwards.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	applied := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		applied["auth.jwt.secret"] = true
	}

	admin := &cfg.Auth.Admin
	if admin.Password != "" {
		if strings.TrimSpace(admin.PasswordHash) == "" {
			hash, err := crypto.HashPassword(admin.Password)
			if err != nil {
				return nil, fmt.Errorf("hash admin password: %w", err)
			}
			admin.PasswordHash = hash
			applied["auth.admin.password_hash"] = true
		}
		admin.Password = ""
	}

	return applied, nil
}
