package completion_helper

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete prints all flags of the current command to facilitate shell completion.
// This is used to ensure flags are suggested even when the default urfave/cli completion might fail.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(cmd.Root().Writer, "-"+name)
			} else {
				_, _ = fmt.Fprintln(cmd.Root().Writer, "--"+name)
			}
		}
	}
}

// ArgsComplete suggests the values returned by list, such as saved draft keys. Values containing
// spaces are quoted for the shell. Errors produce no suggestions.
func ArgsComplete(list func(ctx context.Context) ([]string, error)) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		values, err := list(ctx)
		if err != nil {
			return
		}
		for _, v := range values {
			if strings.ContainsAny(v, " []") {
				v = "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
			}
			_, _ = fmt.Fprintln(cmd.Root().Writer, v)
		}
	}
}
