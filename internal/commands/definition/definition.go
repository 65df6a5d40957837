package definition

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

// DefinitionSource serves the cached report form and can force a refetch.
type DefinitionSource interface {
	Get(ctx context.Context) (*models.FormDefinition, error)
	Refresh(ctx context.Context) (*models.FormDefinition, error)
}

type DefinitionSourceProvider func() (DefinitionSource, error)

type DefinitionCommandFactory struct {
	definitions DefinitionSourceProvider
}

func NewDefinitionCommandFactory(definitions DefinitionSourceProvider) *DefinitionCommandFactory {
	return &DefinitionCommandFactory{definitions: definitions}
}

func (f *DefinitionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "definition",
		Usage: t.GetMessage("definition.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: t.GetMessage("definition.show_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					src, err := f.definitions()
					if err != nil {
						return err
					}
					def, err := src.Get(ctx)
					if err != nil {
						return err
					}
					printDefinition(cmd.Root().Writer, t, def)
					return nil
				},
			},
			{
				Name:  "refresh",
				Usage: t.GetMessage("definition.refresh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					src, err := f.definitions()
					if err != nil {
						return err
					}
					var def *models.FormDefinition
					err = ui.WithSpinner(
						t.GetMessage("definition.refreshing", 0, nil),
						t.GetMessage("definition.refreshed", 0, nil),
						func() error {
							var rerr error
							def, rerr = src.Refresh(ctx)
							return rerr
						})
					if err != nil {
						return err
					}
					ui.PrintInfo(cmd.Root().Writer, t.GetMessage("definition.summary", 0, map[string]interface{}{
						"Fields":  len(def.FieldItems()),
						"Devices": len(def.Hardware),
					}))
					return nil
				},
			},
		},
	}
}

func printDefinition(w io.Writer, t *i18n.Translations, def *models.FormDefinition) {
	title := def.Template.Name
	if title == "" {
		title = t.GetMessage("definition.untitled", 0, nil)
	}
	ui.PrintSectionBanner(w, title)

	for _, item := range def.FieldItems() {
		line := fmt.Sprintf("  %-24s %-9s %s", item.ID, item.Type, item.Attributes.Label)
		if item.Validations.Required {
			line += " " + ui.Warning.Sprint("*")
		}
		_, _ = fmt.Fprintln(w, line)
		if len(item.Attributes.Options) > 0 {
			_, _ = fmt.Fprintf(w, "  %-24s %s\n", "", ui.Dim.Sprint(item.Attributes.Options))
		}
	}

	if len(def.Hardware) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	ui.PrintInfo(w, t.GetMessage("definition.hardware_header", 0, nil))
	for _, h := range def.Hardware {
		_, _ = fmt.Fprintf(w, "  • %s %s\n", h.Name, ui.Dim.Sprint(t.GetMessage("definition.hardware_limits", 0, map[string]interface{}{
			"Refresh": h.MaxRefreshRate,
			"TDP":     h.MaxTDPW,
			"GPU":     h.MaxGPUClk,
			"VRR":     h.SupportsVRR,
		})))
	}
}
