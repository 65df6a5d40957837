package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/commands/completion_helper"
	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/identity"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/services"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

// ReportOpener starts report sessions.
type ReportOpener interface {
	Open(ctx context.Context, in identity.Input) (*services.ReportSession, error)
	OpenDraft(ctx context.Context, key string) (*services.ReportSession, error)
	OpenEdit(ctx context.Context, report models.GameReport) (*services.ReportSession, error)
}

// ReportServiceProvider builds the report service on first use, so commands that never touch
// reports do not open storage.
type ReportServiceProvider func() (ReportOpener, error)

// GameDetailsFetcher looks up a game's published reports.
type GameDetailsFetcher interface {
	GameDetailsByAppID(ctx context.Context, appID int) (*models.GameDetails, error)
	GameDetailsByName(ctx context.Context, name string) (*models.GameDetails, error)
}

type ReportCommandFactory struct {
	reports ReportServiceProvider
	games   GameDetailsFetcher
}

func NewReportCommandFactory(reports ReportServiceProvider, games GameDetailsFetcher) *ReportCommandFactory {
	return &ReportCommandFactory{reports: reports, games: games}
}

func (f *ReportCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: t.GetMessage("report.usage", 0, nil),
		Commands: []*cli.Command{
			f.newCreateCommand(t),
			f.newEditCommand(t),
			f.newSubmitCommand(t),
		},
	}
}

func sessionFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: t.GetMessage("report.flag_set", 0, nil),
		},
		&cli.StringSliceFlag{
			Name:  "image",
			Usage: t.GetMessage("report.flag_image", 0, nil),
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   t.GetMessage("report.flag_interactive", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "submit",
			Usage: t.GetMessage("report.flag_submit", 0, nil),
		},
	}
}

func (f *ReportCommandFactory) newCreateCommand(t *i18n.Translations) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "game",
			Usage: t.GetMessage("report.flag_game", 0, nil),
		},
		&cli.StringFlag{
			Name:  "appid",
			Usage: t.GetMessage("report.flag_appid", 0, nil),
		},
	}, sessionFlags(t)...)

	return &cli.Command{
		Name:          "create",
		Usage:         t.GetMessage("report.create_usage", 0, nil),
		Flags:         flags,
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := f.reports()
			if err != nil {
				return err
			}
			session, err := svc.Open(ctx, identity.Input{
				GameName: strings.TrimSpace(cmd.String("game")),
				AppID:    strings.TrimSpace(cmd.String("appid")),
			})
			if err != nil {
				return err
			}
			return runSession(ctx, cmd, t, session)
		},
	}
}

func (f *ReportCommandFactory) newEditCommand(t *i18n.Translations) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "game",
			Usage: t.GetMessage("report.flag_game", 0, nil),
		},
		&cli.StringFlag{
			Name:  "appid",
			Usage: t.GetMessage("report.flag_appid", 0, nil),
		},
		&cli.IntFlag{
			Name:     "report",
			Usage:    t.GetMessage("report.flag_report", 0, nil),
			Required: true,
		},
	}, sessionFlags(t)...)

	return &cli.Command{
		Name:          "edit",
		Usage:         t.GetMessage("report.edit_usage", 0, nil),
		Flags:         flags,
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			details, err := f.gameDetails(ctx, t, cmd.String("appid"), cmd.String("game"))
			if err != nil {
				return err
			}

			number := cmd.Int("report")
			report, ok := findReport(details, number)
			if !ok {
				return domainErrors.ErrReportNotFound.WithContext("detail", fmt.Sprintf("#%d", number))
			}

			svc, err := f.reports()
			if err != nil {
				return err
			}
			session, err := svc.OpenEdit(ctx, report)
			if err != nil {
				return err
			}
			return runSession(ctx, cmd, t, session)
		},
	}
}

func (f *ReportCommandFactory) newSubmitCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: t.GetMessage("report.submit_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Usage:    t.GetMessage("report.flag_key", 0, nil),
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := f.reports()
			if err != nil {
				return err
			}
			session, err := svc.OpenDraft(ctx, cmd.String("key"))
			if err != nil {
				return err
			}
			return submit(ctx, cmd, t, session)
		},
	}
}

func (f *ReportCommandFactory) gameDetails(ctx context.Context, t *i18n.Translations, appID, name string) (*models.GameDetails, error) {
	appID = strings.TrimSpace(appID)
	name = strings.TrimSpace(name)
	switch {
	case appID != "":
		id, err := strconv.Atoi(appID)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s", t.GetMessage("report.invalid_appid", 0, map[string]interface{}{"Value": appID}))
		}
		return f.games.GameDetailsByAppID(ctx, id)
	case name != "":
		return f.games.GameDetailsByName(ctx, name)
	default:
		return nil, fmt.Errorf("%s", t.GetMessage("report.missing_game", 0, nil))
	}
}

func findReport(details *models.GameDetails, number int) (models.GameReport, bool) {
	if details == nil {
		return models.GameReport{}, false
	}
	for _, r := range details.Reports {
		if n, ok := r.IssueNumber(); ok && n == number {
			return r, true
		}
	}
	return models.GameReport{}, false
}

// runSession applies --set and --image, optionally prompts for every field, then either submits
// or leaves the report saved as a draft.
func runSession(ctx context.Context, cmd *cli.Command, t *i18n.Translations, session *services.ReportSession) error {
	w := cmd.Root().Writer

	for _, assignment := range cmd.StringSlice("set") {
		id, value, ok := strings.Cut(assignment, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s", t.GetMessage("report.invalid_set", 0, map[string]interface{}{"Value": assignment}))
		}
		if err := setField(ctx, session, strings.TrimSpace(id), value); err != nil {
			return err
		}
	}

	if images := cmd.StringSlice("image"); len(images) > 0 {
		if err := session.SetImages(ctx, images); err != nil {
			return err
		}
	}

	if cmd.Bool("interactive") {
		p := newPrompter(cmd.Root().Reader, w, t)
		err := p.run(ctx, session)
		if errors.Is(err, errAborted) {
			return closeSession(ctx, w, t, session)
		}
		if err != nil {
			return err
		}
	}

	if cmd.Bool("submit") {
		return submit(ctx, cmd, t, session)
	}

	ui.PrintSuccess(w, t.GetMessage("report.draft_saved", 0, map[string]interface{}{"Key": session.Key()}))
	ui.PrintInfo(w, t.GetMessage("report.submit_hint", 0, map[string]interface{}{"Key": session.Key()}))
	return nil
}

// closeSession is the back action: an abandoned edit loses its draft, a new report keeps it.
func closeSession(ctx context.Context, w io.Writer, t *i18n.Translations, session *services.ReportSession) error {
	if err := session.Close(ctx); err != nil {
		return err
	}
	if session.IsEditing() {
		ui.PrintWarning(w, t.GetMessage("report.edit_discarded", 0, nil))
		return nil
	}
	ui.PrintInfo(w, t.GetMessage("report.draft_saved", 0, map[string]interface{}{"Key": session.Key()}))
	return nil
}

// setField turns a rejected value into a validation AppError naming the field.
func setField(ctx context.Context, session *services.ReportSession, id, value string) error {
	err := session.SetField(ctx, id, value)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return domainErrors.ErrValidationFailed.WithError(models.ValidationErrors{*verr})
	}
	return err
}

func submit(ctx context.Context, cmd *cli.Command, t *i18n.Translations, session *services.ReportSession) error {
	w := cmd.Root().Writer
	editing := session.IsEditing()

	var url string
	err := ui.WithSpinner(t.GetMessage("report.submitting", 0, nil), t.GetMessage("report.submitted", 0, nil), func() error {
		var err error
		url, err = session.Submit(ctx)
		return err
	})
	if err != nil {
		return err
	}

	msgID := "report.published"
	if editing {
		msgID = "report.updated"
	}
	ui.PrintSuccess(w, t.GetMessage(msgID, 0, map[string]interface{}{"URL": url}))
	return nil
}
