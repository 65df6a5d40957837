package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/services"
	"github.com/thomas-vilte/deckreport/internal/ui"
)

const (
	abortInput = ":q"
	clearInput = "-"
)

var errAborted = errors.New("report prompt aborted")

// prompter walks the derived form one field at a time. A blank answer keeps the current value,
// "-" clears it and ":q" abandons the form.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	t   *i18n.Translations
}

func newPrompter(r io.Reader, w io.Writer, t *i18n.Translations) *prompter {
	return &prompter{in: bufio.NewReader(r), out: w, t: t}
}

func (p *prompter) run(ctx context.Context, session *services.ReportSession) error {
	ui.PrintInfo(p.out, p.t.GetMessage("report.prompt_hint", 0, nil))

	// Changing the device re-derives the form, so the next field is looked up after every answer.
	visited := make(map[string]bool)
	for {
		field, ok := nextField(session.Sections(), visited)
		if !ok {
			return nil
		}
		visited[field.ID] = true
		if field.Synthetic {
			continue
		}
		if err := p.ask(ctx, session, field); err != nil {
			return err
		}
	}
}

func (p *prompter) ask(ctx context.Context, session *services.ReportSession, field models.DerivedField) error {
	for {
		current := session.Values()[field.ID]
		if field.Kind == models.FieldImageSelect {
			current = strings.Join(session.Images(), ", ")
		}
		_, _ = fmt.Fprint(p.out, p.label(field, current))

		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if err != nil && answer == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch answer {
		case "":
			return nil
		case abortInput:
			return errAborted
		case clearInput:
			answer = ""
		}

		if field.Kind == models.FieldImageSelect {
			if setErr := session.SetImages(ctx, splitList(answer)); setErr != nil {
				return setErr
			}
			return nil
		}

		setErr := session.SetField(ctx, field.ID, answer)
		var verr *models.ValidationError
		if errors.As(setErr, &verr) {
			ui.PrintError(p.out, verr.Message)
			continue
		}
		return setErr
	}
}

func (p *prompter) label(field models.DerivedField, current string) string {
	var b strings.Builder
	label := field.Label
	if label == "" {
		label = field.ID
	}
	b.WriteString(ui.Accent.Sprint(label))
	if field.Required {
		b.WriteString(ui.Error.Sprint("*"))
	}

	switch field.Kind {
	case models.FieldDropdown, models.FieldToggle:
		b.WriteString(" (" + strings.Join(field.Options, " / ") + ")")
	case models.FieldSlider:
		b.WriteString(fmt.Sprintf(" (%g-%g)", field.Min, field.Max))
	case models.FieldImageSelect:
		b.WriteString(" " + ui.Dim.Sprint(p.t.GetMessage("report.images_hint", 0, nil)))
	}
	if current != "" {
		b.WriteString(" " + ui.Dim.Sprintf("[%s]", current))
	}
	b.WriteString(": ")
	return b.String()
}

func nextField(sections []models.Section, visited map[string]bool) (models.DerivedField, bool) {
	for _, s := range sections {
		for _, f := range s.Fields {
			if !visited[f.ID] {
				return f, true
			}
		}
	}
	return models.DerivedField{}, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
