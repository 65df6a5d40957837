package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	plugin "github.com/thomas-vilte/deckreport/internal/settings"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

type SettingsStore interface {
	Load(ctx context.Context) (plugin.PluginConfig, error)
	Save(ctx context.Context, cfg plugin.PluginConfig) error
}

type SettingsStoreProvider func() (SettingsStore, error)

type SettingsCommandFactory struct {
	settings SettingsStoreProvider
}

func NewSettingsCommandFactory(settings SettingsStoreProvider) *SettingsCommandFactory {
	return &SettingsCommandFactory{settings: settings}
}

func (f *SettingsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: t.GetMessage("settings.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  t.GetMessage("settings.show_usage", 0, nil),
				Action: f.showAction(t),
			},
			{
				Name:      "set-devices",
				Usage:     t.GetMessage("settings.set_devices_usage", 0, nil),
				ArgsUsage: "[DEVICE...]",
				// Flag parsing drops blank positional arguments, which must be rejected here.
				SkipFlagParsing: true,
				Action:          f.setDevicesAction(t),
			},
			{
				Name:      "installed-only",
				Usage:     t.GetMessage("settings.installed_only_usage", 0, nil),
				ArgsUsage: "on|off",
				Action:    f.installedOnlyAction(t),
			},
		},
	}
}

func (f *SettingsCommandFactory) showAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		store, err := f.settings()
		if err != nil {
			return err
		}
		cfg, err := store.Load(ctx)
		if err != nil {
			return err
		}
		printSettings(cmd, t, cfg)
		return nil
	}
}

// setDevicesAction replaces the device filter; no arguments clears it.
func (f *SettingsCommandFactory) setDevicesAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		devices := cmd.Args().Slice()
		for _, d := range devices {
			if strings.TrimSpace(d) == "" {
				return domainErrors.ErrConfigInvalid.WithContext("detail", "device names cannot be blank")
			}
		}
		return f.update(ctx, cmd, t, func(cfg *plugin.PluginConfig) error {
			cfg.FilterDevices = devices
			return nil
		})
	}
}

func (f *SettingsCommandFactory) installedOnlyAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return f.update(ctx, cmd, t, func(cfg *plugin.PluginConfig) error {
			switch strings.ToLower(cmd.Args().First()) {
			case "on", "true", "yes":
				cfg.ShowInstalledOnly = true
			case "off", "false", "no":
				cfg.ShowInstalledOnly = false
			default:
				return fmt.Errorf("%s", t.GetMessage("settings.invalid_toggle", 0, map[string]interface{}{"Value": cmd.Args().First()}))
			}
			return nil
		})
	}
}

func (f *SettingsCommandFactory) update(ctx context.Context, cmd *cli.Command, t *i18n.Translations, apply func(*plugin.PluginConfig) error) error {
	store, err := f.settings()
	if err != nil {
		return err
	}
	cfg, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if err := apply(&cfg); err != nil {
		return err
	}
	if err := store.Save(ctx, cfg); err != nil {
		return err
	}
	ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("settings.saved", 0, nil))

	saved, err := store.Load(ctx)
	if err != nil {
		return err
	}
	printSettings(cmd, t, saved)
	return nil
}

func printSettings(cmd *cli.Command, t *i18n.Translations, cfg plugin.PluginConfig) {
	w := cmd.Root().Writer
	devices := t.GetMessage("settings.all_devices", 0, nil)
	if len(cfg.FilterDevices) > 0 {
		devices = strings.Join(cfg.FilterDevices, ", ")
	}
	ui.PrintKeyValue(w, t.GetMessage("settings.filter_devices", 0, nil), devices)
	ui.PrintKeyValue(w, t.GetMessage("settings.installed_only", 0, nil), onOff(cfg.ShowInstalledOnly))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
