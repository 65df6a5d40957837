package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

const bashCompletionScript = `#! /bin/bash

_deckreport_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    local IFS=$'\n'
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _deckreport_bash_autocomplete deckreport
`

const zshCompletionScript = `#compdef deckreport

_deckreport() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _deckreport deckreport
`

const installMarker = "# deckreport shell completion"

const installInfo = `
` + installMarker + `
if command -v deckreport >/dev/null 2>&1; then
	source <(deckreport completion %s)
fi
`

func NewCompletionCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "completion",
		Usage: t.GetMessage("completion.command_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "bash",
				Usage: t.GetMessage("completion.bash_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprint(cmd.Root().Writer, bashCompletionScript)
					return err
				},
			},
			{
				Name:  "zsh",
				Usage: t.GetMessage("completion.zsh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprint(cmd.Root().Writer, zshCompletionScript)
					return err
				},
			},
			{
				Name:   "install",
				Usage:  t.GetMessage("completion.install_usage", 0, nil),
				Action: installAction(t),
			},
		},
	}
}

// installAction appends the loader snippet to the user's shell rc file once.
func installAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		shell := os.Getenv("SHELL")
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("%s", t.GetMessage("completion.error_home_dir", 0, map[string]interface{}{"Error": err.Error()}))
		}

		var configFile, shellName string
		switch {
		case strings.Contains(shell, "zsh"):
			configFile = filepath.Join(home, ".zshrc")
			shellName = "zsh"
		case strings.Contains(shell, "bash"):
			configFile = filepath.Join(home, ".bashrc")
			shellName = "bash"
		default:
			return fmt.Errorf("%s", t.GetMessage("completion.error_unsupported_shell", 0, map[string]interface{}{"Shell": shell}))
		}

		fileContent, err := os.ReadFile(configFile)
		if err == nil && strings.Contains(string(fileContent), installMarker) {
			ui.PrintInfo(w, t.GetMessage("completion.already_installed", 0, map[string]interface{}{"File": configFile}))
			return nil
		}

		f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("%s", t.GetMessage("completion.error_write_config", 0, map[string]interface{}{"Error": err.Error()}))
		}
		defer func() { _ = f.Close() }()

		if _, err := fmt.Fprintf(f, installInfo, shellName); err != nil {
			return fmt.Errorf("%s", t.GetMessage("completion.error_write_config", 0, map[string]interface{}{"Error": err.Error()}))
		}

		ui.PrintSuccess(w, t.GetMessage("completion.installed_success", 0, map[string]interface{}{"File": configFile}))
		_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
		return nil
	}
}
