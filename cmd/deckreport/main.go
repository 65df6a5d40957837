package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/commands/auth"
	"github.com/thomas-vilte/deckreport/internal/commands/completion"
	configcmd "github.com/thomas-vilte/deckreport/internal/commands/config"
	definitioncmd "github.com/thomas-vilte/deckreport/internal/commands/definition"
	"github.com/thomas-vilte/deckreport/internal/commands/draft"
	"github.com/thomas-vilte/deckreport/internal/commands/game"
	"github.com/thomas-vilte/deckreport/internal/commands/registry"
	"github.com/thomas-vilte/deckreport/internal/commands/report"
	settingscmd "github.com/thomas-vilte/deckreport/internal/commands/settings"
	cfg "github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/di"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/ui"
	"github.com/thomas-vilte/deckreport/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgApp, err := cfg.LoadConfig("")
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		return 1
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		ui.HandleAppError(os.Stderr, fmt.Errorf("error loading translations: %w", err))
		return 1
	}

	container := di.NewContainer(cfgApp, translations)
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn(context.Background(), "error closing storage", "error", err)
		}
	}()

	app, err := initializeApp(cfgApp, translations, container)
	if err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		return 1
	}

	ctx := context.Background()
	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		return 1
	}
	notifyUpdate(ctx, container, translations)
	return 0
}

func notifyUpdate(ctx context.Context, container *di.Container, translations *i18n.Translations) {
	checker, err := container.VersionChecker(version.Version)
	if err != nil {
		return
	}
	if latest, ok := checker.CheckForUpdates(ctx); ok {
		ui.PrintWarning(os.Stderr, translations.GetMessage("update.available", 0, map[string]interface{}{
			"Current": version.FullVersion(),
			"Latest":  latest,
		}))
	}
}

func initializeApp(cfgApp *cfg.Config, translations *i18n.Translations, container *di.Container) (*cli.Command, error) {
	registerCommand := registry.NewRegistry(cfgApp, translations)

	reportProvider := func() (report.ReportOpener, error) {
		return container.ReportService()
	}
	if err := registerCommand.Register("report", report.NewReportCommandFactory(reportProvider, container.DeckAPI())); err != nil {
		return nil, err
	}

	draftProvider := func() (draft.DraftStore, error) {
		return container.Drafts()
	}
	if err := registerCommand.Register("draft", draft.NewDraftCommandFactory(draftProvider)); err != nil {
		return nil, err
	}

	definitionProvider := func() (definitioncmd.DefinitionSource, error) {
		return container.Definitions()
	}
	if err := registerCommand.Register("definition", definitioncmd.NewDefinitionCommandFactory(definitionProvider)); err != nil {
		return nil, err
	}

	settingsLoader := func() (game.SettingsLoader, error) {
		return container.Settings()
	}
	if err := registerCommand.Register("game", game.NewGameCommandFactory(container.DeckAPI(), settingsLoader, container.Screenshots())); err != nil {
		return nil, err
	}

	authProvider := func() (auth.AuthManager, error) {
		return container.AuthService()
	}
	if err := registerCommand.Register("auth", auth.NewAuthCommandFactory(authProvider)); err != nil {
		return nil, err
	}

	settingsProvider := func() (settingscmd.SettingsStore, error) {
		return container.Settings()
	}
	if err := registerCommand.Register("settings", settingscmd.NewSettingsCommandFactory(settingsProvider)); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("config", configcmd.NewConfigCommandFactory()); err != nil {
		return nil, err
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations))

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        "deckreport",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag_debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag_verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			l := logger.Initialize(logger.Options{
				Debug:   cmd.Bool("debug") || cfgApp.Debug,
				Verbose: cmd.Bool("verbose"),
				Pretty:  true,
			})
			return logger.WithLogger(ctx, l), nil
		},
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
