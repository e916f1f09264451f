package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fropcore/bmiwidget/internal/app"
	iauth "github.com/fropcore/bmiwidget/internal/auth"
)

type tokenOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func addToken(topLevel *cobra.Command) {
	co := &ConfigOptions{}
	oo := &OutputOptions{}
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin access token signed with the configured JWT secret.",
		Example: `
bmictl token --config /etc/bmiwidget
BMIWIDGET_AUTH_JWT_SECRET=... bmictl token --subject admin --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(co)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
				return errors.New("auth.jwt.secret is not configured; a token signed with a generated secret would be rejected by the server")
			}

			jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
			if err != nil {
				return err
			}

			if strings.TrimSpace(subject) == "" {
				subject = cfg.Auth.AdminConfig().Username
			}
			issued, err := jwtSvc.Issue(subject, iauth.RoleAdmin)
			if err != nil {
				return err
			}

			if oo.JSON {
				return oo.writeJSON(cmd.OutOrStdout(), tokenOutput{AccessToken: issued.Token, ExpiresAt: issued.ExpiresAt})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (defaults to auth.admin.username).")
	addConfigArg(cmd, co)
	addOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func loadConfig(o *ConfigOptions) (*app.Config, error) {
	path := strings.TrimSpace(o.Path)
	if path == "" {
		return app.LoadConfig()
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}
