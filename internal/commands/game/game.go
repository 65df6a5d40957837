package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/settings"
	"github.com/thomas-vilte/deckreport/internal/steam"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

// GameCatalog is the read side of the game data API.
type GameCatalog interface {
	SearchGames(ctx context.Context, term string) ([]models.GameSearchResult, error)
	GameDetailsByAppID(ctx context.Context, appID int) (*models.GameDetails, error)
	GameDetailsByName(ctx context.Context, name string) (*models.GameDetails, error)
	Devices(ctx context.Context) ([]models.Device, error)
}

type SettingsLoader interface {
	Load(ctx context.Context) (settings.PluginConfig, error)
}

type SettingsProvider func() (SettingsLoader, error)

type ScreenshotLister interface {
	List(ctx context.Context, appID string) ([]steam.Screenshot, error)
}

type GameCommandFactory struct {
	catalog     GameCatalog
	settings    SettingsProvider
	screenshots ScreenshotLister
}

func NewGameCommandFactory(catalog GameCatalog, prefs SettingsProvider, screenshots ScreenshotLister) *GameCommandFactory {
	return &GameCommandFactory{catalog: catalog, settings: prefs, screenshots: screenshots}
}

func (f *GameCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "game",
		Usage: t.GetMessage("game.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     t.GetMessage("game.search_usage", 0, nil),
				ArgsUsage: "TERM",
				Action:    f.searchAction(t),
			},
			{
				Name:  "details",
				Usage: t.GetMessage("game.details_usage", 0, nil),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "game", Usage: t.GetMessage("report.flag_game", 0, nil)},
					&cli.StringFlag{Name: "appid", Usage: t.GetMessage("report.flag_appid", 0, nil)},
				},
				Action: f.detailsAction(t),
			},
			{
				Name:   "devices",
				Usage:  t.GetMessage("game.devices_usage", 0, nil),
				Action: f.devicesAction(t),
			},
			{
				Name:  "screenshots",
				Usage: t.GetMessage("game.screenshots_usage", 0, nil),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "appid", Usage: t.GetMessage("report.flag_appid", 0, nil)},
				},
				Action: f.screenshotsAction(t),
			},
		},
	}
}

func (f *GameCommandFactory) searchAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		term := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))

		results, err := f.catalog.SearchGames(ctx, term)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			ui.PrintInfo(w, t.GetMessage("game.no_results", 0, map[string]interface{}{"Term": term}))
			return nil
		}
		for _, r := range results {
			_, _ = fmt.Fprintf(w, "  %-10d %s\n", r.AppID, r.GameName)
		}
		return nil
	}
}

func (f *GameCommandFactory) detailsAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		details, err := f.lookup(ctx, t, cmd.String("appid"), cmd.String("game"))
		if err != nil {
			return err
		}
		if details == nil {
			ui.PrintWarning(w, t.GetMessage("game.not_found", 0, nil))
			return nil
		}

		filter := settings.PluginConfig{}
		if f.settings != nil {
			loader, err := f.settings()
			if err != nil {
				return err
			}
			if filter, err = loader.Load(ctx); err != nil {
				return err
			}
		}

		title := details.GameName
		if details.AppID != nil {
			title = fmt.Sprintf("%s [%d]", title, *details.AppID)
		}
		ui.PrintSectionBanner(w, title)

		shown := 0
		for _, r := range details.Reports {
			device := r.DataString(models.FieldIDDevice)
			if !filter.Matches(device) {
				continue
			}
			shown++
			number, _ := r.IssueNumber()
			_, _ = fmt.Fprintf(w, "  #%-6d %s\n", number, r.Title)
			_, _ = fmt.Fprintf(w, "          %s\n", ui.Dim.Sprintf("%s · %s · %s", device, r.User.Login, r.HTMLURL))
		}

		if shown == 0 {
			ui.PrintInfo(w, t.GetMessage("game.no_reports", 0, nil))
		}
		if hidden := len(details.Reports) - shown; hidden > 0 {
			ui.PrintInfo(w, t.GetMessage("game.reports_filtered", hidden, map[string]interface{}{"Count": hidden}))
		}
		return nil
	}
}

func (f *GameCommandFactory) lookup(ctx context.Context, t *i18n.Translations, appID, name string) (*models.GameDetails, error) {
	if appID = strings.TrimSpace(appID); appID != "" {
		id, err := strconv.Atoi(appID)
		if err != nil {
			return nil, fmt.Errorf("%s", t.GetMessage("report.invalid_appid", 0, map[string]interface{}{"Value": appID}))
		}
		return f.catalog.GameDetailsByAppID(ctx, id)
	}
	if name = strings.TrimSpace(name); name != "" {
		return f.catalog.GameDetailsByName(ctx, name)
	}
	return nil, fmt.Errorf("%s", t.GetMessage("report.missing_game", 0, nil))
}

func (f *GameCommandFactory) devicesAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		devices, err := f.catalog.Devices(ctx)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			ui.PrintInfo(w, t.GetMessage("game.no_devices", 0, nil))
			return nil
		}
		for _, d := range devices {
			ui.PrintKeyValue(w, d.Name, d.Description)
		}
		return nil
	}
}

func (f *GameCommandFactory) screenshotsAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		if f.screenshots == nil {
			return domainErrors.ErrStorageRead.WithContext("detail", "screenshots")
		}
		shots, err := f.screenshots.List(ctx, strings.TrimSpace(cmd.String("appid")))
		if err != nil {
			return domainErrors.ErrStorageRead.WithError(err)
		}
		if len(shots) == 0 {
			ui.PrintInfo(w, t.GetMessage("game.no_screenshots", 0, nil))
			return nil
		}
		for _, s := range shots {
			_, _ = fmt.Fprintf(w, "  %s %s\n", s.Path, ui.Dim.Sprintf("[%s] %s %d KiB",
				s.AppID, s.ModTime.Format("2006-01-02 15:04"), (s.Size+1023)/1024))
		}
		return nil
	}
}
