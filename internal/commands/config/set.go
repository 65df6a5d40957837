package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/commands/completion_helper"
	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config.set_usage", 0, nil),
		ArgsUsage: "KEY VALUE",
		ShellComplete: completion_helper.ArgsComplete(func(context.Context) ([]string, error) {
			return config.Keys(), nil
		}),
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() < 2 {
				return fmt.Errorf("%s", t.GetMessage("config.set_args", 0, nil))
			}

			key := strings.ToLower(command.Args().Get(0))
			value := strings.Join(command.Args().Slice()[1:], " ")

			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			saved, err := cfg.Get(key)
			if err != nil {
				return err
			}
			ui.PrintSuccess(command.Root().Writer, t.GetMessage("config.set_success", 0, map[string]interface{}{
				"Key":   key,
				"Value": saved,
			}))
			return nil
		},
	}
}
