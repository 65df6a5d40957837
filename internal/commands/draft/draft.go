package draft

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/commands/completion_helper"
	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

type DraftStore interface {
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) (models.Draft, bool, error)
	Remove(ctx context.Context, key string) error
}

type DraftStoreProvider func() (DraftStore, error)

type DraftCommandFactory struct {
	drafts DraftStoreProvider
}

func NewDraftCommandFactory(drafts DraftStoreProvider) *DraftCommandFactory {
	return &DraftCommandFactory{drafts: drafts}
}

func (f *DraftCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: t.GetMessage("draft.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  t.GetMessage("draft.list_usage", 0, nil),
				Action: f.listAction(t),
			},
			{
				Name:          "show",
				Usage:         t.GetMessage("draft.show_usage", 0, nil),
				ArgsUsage:     "KEY",
				ShellComplete: completion_helper.ArgsComplete(f.keys),
				Action:        f.showAction(t),
			},
			{
				Name:          "rm",
				Usage:         t.GetMessage("draft.rm_usage", 0, nil),
				ArgsUsage:     "KEY",
				ShellComplete: completion_helper.ArgsComplete(f.keys),
				Action:        f.rmAction(t),
			},
		},
	}
}

func (f *DraftCommandFactory) keys(ctx context.Context) ([]string, error) {
	store, err := f.drafts()
	if err != nil {
		return nil, err
	}
	return store.Keys(ctx)
}

func (f *DraftCommandFactory) listAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		store, err := f.drafts()
		if err != nil {
			return err
		}
		keys, err := store.Keys(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			ui.PrintInfo(w, t.GetMessage("draft.none", 0, nil))
			return nil
		}

		ui.PrintSectionBanner(w, t.GetMessage("draft.list_header", len(keys), map[string]interface{}{"Count": len(keys)}))
		for _, key := range keys {
			d, _, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			line := "  • " + key
			if d.IsEditing() {
				line += " " + ui.Dim.Sprint(t.GetMessage("draft.editing", 0, map[string]interface{}{"Number": *d.EditingIssueNumber}))
			}
			_, _ = fmt.Fprintln(w, line)
		}
		return nil
	}
}

func (f *DraftCommandFactory) showAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		key, err := keyArg(cmd, t)
		if err != nil {
			return err
		}
		store, err := f.drafts()
		if err != nil {
			return err
		}
		d, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return domainErrors.ErrDraftMissing.WithContext("detail", key)
		}

		ui.PrintSectionBanner(w, key)
		if d.IsEditing() {
			ui.PrintInfo(w, t.GetMessage("draft.editing_issue", 0, map[string]interface{}{
				"Number": *d.EditingIssueNumber,
				"Title":  d.EditingIssueTitle,
			}))
		}
		ui.PrintValues(w, d.Values)
		for _, img := range d.Images {
			ui.PrintKeyValue(w, t.GetMessage("draft.image", 0, nil), img)
		}
		return nil
	}
}

func (f *DraftCommandFactory) rmAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		key, err := keyArg(cmd, t)
		if err != nil {
			return err
		}
		store, err := f.drafts()
		if err != nil {
			return err
		}
		_, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return domainErrors.ErrDraftMissing.WithContext("detail", key)
		}
		if err := store.Remove(ctx, key); err != nil {
			return err
		}
		ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("draft.removed", 0, map[string]interface{}{"Key": key}))
		return nil
	}
}

func keyArg(cmd *cli.Command, t *i18n.Translations) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s", t.GetMessage("draft.key_required", 0, nil))
	}
	return cmd.Args().First(), nil
}
