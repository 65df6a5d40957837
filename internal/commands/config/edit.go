package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

func (c *ConfigCommandFactory) newEditCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "edit",
		Usage:  t.GetMessage("config.edit_usage", 0, nil),
		Action: editConfigAction(cfg, t),
	}
}

// editConfigAction opens the config file in $EDITOR and validates the result. The file is
// written first when it does not exist yet.
func editConfigAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			if _, err := exec.LookPath("nano"); err == nil {
				editor = "nano"
			} else if _, err := exec.LookPath("vim"); err == nil {
				editor = "vim"
			} else {
				return fmt.Errorf("%s", t.GetMessage("config.no_editor", 0, nil))
			}
		}

		if _, err := os.Stat(cfg.PathFile); os.IsNotExist(err) {
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
		}

		cmd := exec.CommandContext(ctx, editor, cfg.PathFile)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", t.GetMessage("config.editor_failed", 0, nil), err)
		}

		edited, err := config.LoadConfig(cfg.PathFile)
		if err != nil {
			return err
		}
		*cfg = *edited
		ui.PrintSuccess(command.Root().Writer, t.GetMessage("config.edit_success", 0, nil))
		return nil
	}
}
