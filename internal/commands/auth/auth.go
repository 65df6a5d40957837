package auth

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	authflow "github.com/thomas-vilte/deckreport/internal/auth"
	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/services"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

// AuthManager logs the user in and out of GitHub.
type AuthManager interface {
	Login(ctx context.Context, prompt services.PromptFunc) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (*models.UserProfile, error)
}

type AuthManagerProvider func() (AuthManager, error)

type AuthCommandFactory struct {
	auth AuthManagerProvider
}

func NewAuthCommandFactory(auth AuthManagerProvider) *AuthCommandFactory {
	return &AuthCommandFactory{auth: auth}
}

func (f *AuthCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: t.GetMessage("auth.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  t.GetMessage("auth.login_usage", 0, nil),
				Action: f.loginAction(t),
			},
			{
				Name:   "logout",
				Usage:  t.GetMessage("auth.logout_usage", 0, nil),
				Action: f.logoutAction(t),
			},
			{
				Name:   "whoami",
				Usage:  t.GetMessage("auth.whoami_usage", 0, nil),
				Action: f.whoamiAction(t),
			},
		},
	}
}

func (f *AuthCommandFactory) loginAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		svc, err := f.auth()
		if err != nil {
			return err
		}

		profile, err := svc.Login(ctx, func(code *authflow.DeviceCode) error {
			ui.PrintSectionBanner(w, t.GetMessage("auth.device_title", 0, nil))
			ui.PrintKeyValue(w, t.GetMessage("auth.verification_uri", 0, nil), code.VerificationURI)
			ui.PrintKeyValue(w, t.GetMessage("auth.user_code", 0, nil), code.UserCode)
			_, _ = fmt.Fprintln(w)
			ui.PrintInfo(w, t.GetMessage("auth.waiting", 0, nil))
			return nil
		})
		if err != nil {
			return err
		}

		if profile.Login == "" {
			ui.PrintWarning(w, t.GetMessage("auth.logged_in_no_profile", 0, nil))
			return nil
		}
		ui.PrintSuccess(w, t.GetMessage("auth.logged_in", 0, map[string]interface{}{"Login": profile.Login}))
		return nil
	}
}

func (f *AuthCommandFactory) logoutAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		svc, err := f.auth()
		if err != nil {
			return err
		}
		if err := svc.Logout(ctx); err != nil {
			return err
		}
		ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("auth.logged_out", 0, nil))
		return nil
	}
}

func (f *AuthCommandFactory) whoamiAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		svc, err := f.auth()
		if err != nil {
			return err
		}
		profile, err := svc.Whoami(ctx)
		if err != nil {
			return err
		}
		if profile.Login == "" {
			ui.PrintInfo(w, t.GetMessage("auth.no_profile", 0, nil))
			return nil
		}
		ui.PrintKeyValue(w, t.GetMessage("auth.login", 0, nil), profile.Login)
		if profile.Name != "" {
			ui.PrintKeyValue(w, t.GetMessage("auth.name", 0, nil), profile.Name)
		}
		if profile.HTMLURL != "" {
			ui.PrintKeyValue(w, t.GetMessage("auth.profile_url", 0, nil), profile.HTMLURL)
		}
		return nil
	}
}
