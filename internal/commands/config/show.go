package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer
			ui.PrintSectionBanner(w, t.GetMessage("config.current", 0, nil))
			if cfg.PathFile != "" {
				ui.PrintInfo(w, t.GetMessage("config.path", 0, map[string]interface{}{"Path": cfg.PathFile}))
			}

			for _, key := range config.Keys() {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				if value == "" {
					value = ui.Dim.Sprint(t.GetMessage("config.unset", 0, nil))
				}
				ui.PrintKeyValue(w, key, value)
			}
			return nil
		},
	}
}
